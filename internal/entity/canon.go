package entity

// HebrewBook is a book of the canonical biblical text.
type HebrewBook struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CanonCorpus is a batch of canonical data loaded from an external lexicon
// source. Word rows reference books by id; verses are derived from them.
type CanonCorpus struct {
	Books   []HebrewBook
	Lexemes []BiblicalLexeme
	Words   []CanonicalWord
}

// CanonImportStats counts the rows an import actually inserted.
type CanonImportStats struct {
	Books   int `json:"books"`
	Lexemes int `json:"lexemes"`
	Verses  int `json:"verses"`
	Words   int `json:"words"`
}
