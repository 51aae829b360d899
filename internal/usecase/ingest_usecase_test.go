package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/eslsoft/hebcorpus/internal/entity"
)

const (
	testBookID     int64 = 1
	testLinkedBook int64 = 10
)

func seededStore() *fakeStore {
	store := newFakeStore()
	store.books[testBookID] = &entity.CustomBook{ID: testBookID, Slug: "genesis-retold", Title: "Genesis retold", LinkedHebrewBookID: int64Ptr(testLinkedBook)}
	store.books[2] = &entity.CustomBook{ID: 2, Slug: "unlinked", Title: "Unlinked"}
	store.biblical = []entity.BiblicalLexeme{
		{ID: "bib-bara", Lemma: "בָּרָא", LemmaClean: strPtr("ברא")},
		{ID: "bib-elohim", Lemma: "אֱלֹהִים", LemmaClean: strPtr("אלהים")},
		{ID: "bib-erets", Lemma: "אֶרֶץ", LemmaClean: strPtr("ארץ")},
		{ID: "bib-unindexed", Lemma: "?", LemmaClean: nil},
	}
	store.custom = []entity.CustomLexeme{
		{ID: "cus-erets", Lemma: "ארץ", LemmaClean: "ארץ", Source: entity.LexemeSourceCustom},
	}
	store.canon[canonKey{testLinkedBook, 1}] = []entity.CanonicalVerse{
		{Number: 1, Words: []string{"בְּרֵאשִׁית", "בָּרָא", "אֱלֹהִים"}},
		{Number: 2, Words: []string{"וְהָאָרֶץ"}},
	}
	return store
}

func newTestIngestUsecase(store *fakeStore) *ingestUsecase {
	return NewIngestUsecase(store, store, store, store, store, newTestLogger()).(*ingestUsecase)
}

func TestAnalyze_SingleKnownToken(t *testing.T) {
	store := seededStore()
	uc := newTestIngestUsecase(store)

	analysis, err := uc.Analyze(context.Background(), entity.ChapterDraft{BookID: 2, ChapterNumber: 1, RawText: "ברא"})
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if analysis.VerseCount != 1 || analysis.TokenCount != 1 || analysis.KnownTokenCount != 1 || analysis.NewTokenCount != 0 {
		t.Fatalf("unexpected counts %+v", analysis)
	}
	token := analysis.Verses[0].Tokens[0]
	if token.Key != (entity.TokenKey{Verse: 1, Position: 1}) || token.Surface != "ברא" || token.Consonants != "ברא" {
		t.Fatalf("unexpected token %+v", token)
	}
	if token.Selected == nil || token.Selected.ID != "bib-bara" || token.Selected.Source != entity.LexemeSourceBiblical {
		t.Fatalf("expected biblical selection, got %+v", token.Selected)
	}
	if analysis.ExactBibleMatch {
		t.Fatal("unlinked book must not match exactly")
	}
	if analysis.LinkedHebrewBookID != nil {
		t.Fatalf("expected no linked book, got %v", *analysis.LinkedHebrewBookID)
	}
}

func TestAnalyze_CountsAndOrdering(t *testing.T) {
	store := seededStore()
	uc := newTestIngestUsecase(store)

	raw := "ברא אלהים ארץ\n\n\n   \n\nשלג\n\n"
	analysis, err := uc.Analyze(context.Background(), entity.ChapterDraft{BookID: testBookID, ChapterNumber: 5, RawText: raw})
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if analysis.VerseCount != 2 {
		t.Fatalf("expected 2 verses, got %d", analysis.VerseCount)
	}
	if analysis.TokenCount != 5 || analysis.KnownTokenCount != 3 || analysis.NewTokenCount != 2 {
		t.Fatalf("unexpected counts tokens=%d known=%d new=%d", analysis.TokenCount, analysis.KnownTokenCount, analysis.NewTokenCount)
	}

	total := 0
	for vi, verse := range analysis.Verses {
		if verse.Number != vi+1 {
			t.Fatalf("verse %d numbered %d", vi, verse.Number)
		}
		for ti, token := range verse.Tokens {
			total++
			if token.Key.Verse != verse.Number || token.Key.Position != ti+1 {
				t.Fatalf("token key %s out of order", token.Key)
			}
			if token.Known != (len(token.Candidates) > 0) || token.Known != (token.Selected != nil) {
				t.Fatalf("known flag inconsistent for %s", token.Key)
			}
			if token.Candidates == nil {
				t.Fatalf("candidates of %s must not be nil", token.Key)
			}
		}
	}
	if total != analysis.TokenCount {
		t.Fatalf("token count %d does not match tokens %d", analysis.TokenCount, total)
	}

	erets := analysis.Verses[0].Tokens[2]
	if len(erets.Candidates) != 2 || erets.Candidates[0].Source != entity.LexemeSourceBiblical || erets.Candidates[1].Source != entity.LexemeSourceCustom {
		t.Fatalf("expected biblical candidate before custom, got %+v", erets.Candidates)
	}

	snow := analysis.Verses[1].Tokens
	if len(snow) != 2 || snow[0].Surface != "ש" || snow[1].Surface != "לג" {
		t.Fatalf("expected prefix split of unknown word, got %+v", snow)
	}
}

func TestAnalyze_KeepsKnownWordWhole(t *testing.T) {
	store := seededStore()
	store.biblical = append(store.biblical, entity.BiblicalLexeme{ID: "bib-sheleg", Lemma: "שֶׁלֶג", LemmaClean: strPtr("שלג")})
	uc := newTestIngestUsecase(store)

	analysis, err := uc.Analyze(context.Background(), entity.ChapterDraft{BookID: 2, ChapterNumber: 1, RawText: "שלג"})
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	tokens := analysis.Verses[0].Tokens
	if len(tokens) != 1 || tokens[0].Surface != "שלג" || !tokens[0].Known {
		t.Fatalf("expected recombined known token, got %+v", tokens)
	}
}

func TestAnalyze_SegmentationOverride(t *testing.T) {
	store := seededStore()
	uc := newTestIngestUsecase(store)

	draft := entity.ChapterDraft{
		BookID:        2,
		ChapterNumber: 1,
		RawText:       "בראשית ברא\n\nארץ",
		SegmentationOverrides: map[string][]string{
			"1": {" ב ", "ראשית", "   ", "ברא", "123"},
			"2": {"  ", ""},
			"x": {"ארץ"},
		},
	}
	analysis, err := uc.Analyze(context.Background(), draft)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	first := analysis.Verses[0].Tokens
	want := []string{"ב", "ראשית", "ברא"}
	if len(first) != len(want) {
		t.Fatalf("expected %d override tokens, got %+v", len(want), first)
	}
	for i, surface := range want {
		if first[i].Surface != surface {
			t.Fatalf("override token %d = %q, want %q", i, first[i].Surface, surface)
		}
	}
	// verse 2 override collapsed to nothing, so automatic tokenization applies
	if second := analysis.Verses[1].Tokens; len(second) != 1 || second[0].Surface != "ארץ" {
		t.Fatalf("expected automatic tokenization for verse 2, got %+v", second)
	}
}

func TestAnalyze_NonCanonicalOverrideKeys(t *testing.T) {
	uc := newTestIngestUsecase(seededStore())
	ctx := context.Background()
	draft := entity.ChapterDraft{
		BookID:        2,
		ChapterNumber: 1,
		RawText:       "בראשית ברא אלהים",
		SegmentationOverrides: map[string][]string{
			"1":  {"ברא"},
			"01": {"אלהים", "ארץ"},
			" 1": {"ארץ", "ארץ", "ארץ"},
			"+1": {"ארץ"},
		},
	}

	first, err := uc.Analyze(ctx, draft)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if tokens := first.Verses[0].Tokens; len(tokens) != 1 || tokens[0].Surface != "ברא" {
		t.Fatalf(`only key "1" may address verse 1, got %+v`, tokens)
	}
	for i := 0; i < 50; i++ {
		again, err := uc.Analyze(ctx, draft)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if again.Digest != first.Digest || again.TokenCount != first.TokenCount {
			t.Fatalf("run %d: analysis changed: %s/%d vs %s/%d", i, again.Digest, again.TokenCount, first.Digest, first.TokenCount)
		}
	}

	canonicalOnly, err := uc.Analyze(ctx, entity.ChapterDraft{BookID: 2, ChapterNumber: 1, RawText: draft.RawText, SegmentationOverrides: map[string][]string{"1": {"ברא"}}})
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if canonicalOnly.Digest != first.Digest {
		t.Fatal("ignored keys must not affect the digest")
	}
}

func TestAnalyze_DigestStability(t *testing.T) {
	store := seededStore()
	uc := newTestIngestUsecase(store)
	ctx := context.Background()

	base := entity.ChapterDraft{BookID: 2, ChapterNumber: 1, RawText: "ברא\n\nארץ", SegmentationOverrides: map[string][]string{"2": {"א", "רץ"}, "1": {"ברא"}}}
	a1, err := uc.Analyze(ctx, base)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	a2, err := uc.Analyze(ctx, entity.ChapterDraft{BookID: 2, ChapterNumber: 1, RawText: "  ברא  \n \n ארץ\n", SegmentationOverrides: map[string][]string{"1": {" ברא "}, "2": {"א ", "", "רץ"}, "3": {"  "}}})
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if a1.Digest == "" || a1.Digest != a2.Digest {
		t.Fatalf("equivalent drafts must share a digest: %q vs %q", a1.Digest, a2.Digest)
	}

	variants := []entity.ChapterDraft{
		{BookID: 1, ChapterNumber: 1, RawText: base.RawText, SegmentationOverrides: base.SegmentationOverrides},
		{BookID: 2, ChapterNumber: 2, RawText: base.RawText, SegmentationOverrides: base.SegmentationOverrides},
		{BookID: 2, ChapterNumber: 1, RawText: "ברא\n\nארצ", SegmentationOverrides: base.SegmentationOverrides},
		{BookID: 2, ChapterNumber: 1, RawText: base.RawText},
	}
	for i, v := range variants {
		got, err := uc.Analyze(ctx, v)
		if err != nil {
			t.Fatalf("variant %d: %v", i, err)
		}
		if got.Digest == a1.Digest {
			t.Fatalf("variant %d must change the digest", i)
		}
	}

	// the lexicon is not part of the digest
	store.custom = append(store.custom, entity.CustomLexeme{ID: "cus-new", Lemma: "רץ", LemmaClean: "רץ"})
	a3, err := uc.Analyze(ctx, base)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if a3.Digest != a1.Digest {
		t.Fatal("lexicon changes must not alter the digest")
	}
}

func TestAnalyze_ExactBibleMatch(t *testing.T) {
	store := seededStore()
	uc := newTestIngestUsecase(store)
	ctx := context.Background()
	store.canon[canonKey{testLinkedBook, 2}] = []entity.CanonicalVerse{
		{Number: 1, Words: []string{"בְּרֵאשִׁית"}},
		{Number: 2, Words: []string{}},
	}

	cases := []struct {
		name    string
		book    int64
		chapter int
		raw     string
		want    bool
	}{
		{name: "same consonants", book: testBookID, chapter: 1, raw: "בראשית ברא אלהים\n\nוהארץ", want: true},
		{name: "pointing ignored", book: testBookID, chapter: 1, raw: "בְּרֵאשִׁית בָּרָא אֱלֹהִים׃\n\nוְהָאָרֶץ", want: true},
		{name: "verse count differs", book: testBookID, chapter: 1, raw: "בראשית ברא אלהים", want: false},
		{name: "text differs", book: testBookID, chapter: 1, raw: "בראשית ברא אלהים\n\nהארץ", want: false},
		{name: "no canonical verses", book: testBookID, chapter: 9, raw: "בראשית", want: false},
		{name: "canonical verse without words", book: testBookID, chapter: 2, raw: "בראשית", want: false},
		{name: "not linked", book: 2, chapter: 1, raw: "בראשית ברא אלהים\n\nוהארץ", want: false},
		{name: "unknown book", book: 99, chapter: 1, raw: "בראשית ברא אלהים\n\nוהארץ", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			analysis, err := uc.Analyze(ctx, entity.ChapterDraft{BookID: tc.book, ChapterNumber: tc.chapter, RawText: tc.raw})
			if err != nil {
				t.Fatalf("Analyze returned error: %v", err)
			}
			if analysis.ExactBibleMatch != tc.want {
				t.Fatalf("ExactBibleMatch = %v, want %v", analysis.ExactBibleMatch, tc.want)
			}
		})
	}
}

func TestAnalyze_MissingFields(t *testing.T) {
	uc := newTestIngestUsecase(seededStore())
	drafts := []entity.ChapterDraft{
		{ChapterNumber: 1, RawText: "ברא"},
		{BookID: 1, RawText: "ברא"},
		{BookID: 1, ChapterNumber: 1, RawText: " \n\t "},
	}
	for i, draft := range drafts {
		_, err := uc.Analyze(context.Background(), draft)
		if !errors.Is(err, entity.ErrInvalidInput) || entity.KindOf(err) != entity.KindValidation {
			t.Fatalf("draft %d: expected validation error, got %v", i, err)
		}
	}
}

func analyzeForCommit(t *testing.T, uc *ingestUsecase, draft entity.ChapterDraft) *entity.IngestAnalysis {
	t.Helper()
	analysis, err := uc.Analyze(context.Background(), draft)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	return analysis
}

func TestCommit_ImportsChapter(t *testing.T) {
	store := seededStore()
	uc := newTestIngestUsecase(store)
	ctx := context.Background()
	draft := entity.ChapterDraft{BookID: testBookID, ChapterNumber: 3, RawText: "ברא אלהים ארץ\n\nשלג"}
	analysis := analyzeForCommit(t, uc, draft)

	result, err := uc.Commit(ctx, &entity.CommitRequest{Draft: draft, AnalysisDigest: analysis.Digest, ActorID: "admin-1"})
	if err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if result.Status != entity.IngestStatusImported || result.Skipped {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.VerseCount != 2 || result.TokenCount != 5 || result.KnownTokenCount != 3 || result.NewTokenCount != 2 || result.OverrideCount != 0 {
		t.Fatalf("unexpected counts %+v", result)
	}

	words := store.chapterWords(draft.Key())
	if len(words) != analysis.TokenCount {
		t.Fatalf("expected %d words, got %d", analysis.TokenCount, len(words))
	}
	wantIDs := []string{"bib-bara", "bib-elohim", "bib-erets"}
	for i, id := range wantIDs {
		biblical, custom := words[i].Lexeme.Columns()
		if biblical == nil || custom != nil || *biblical != id {
			t.Fatalf("word %d: expected biblical %s, got %+v", i, id, words[i].Lexeme)
		}
	}
	for _, w := range words[3:] {
		biblical, custom := w.Lexeme.Columns()
		if biblical != nil || custom == nil {
			t.Fatalf("expected custom lexeme for %q, got %+v", w.Surface, w.Lexeme)
		}
	}
	if store.customCount() != 3 {
		t.Fatalf("expected two new custom lexemes, have %d", store.customCount())
	}

	audit := store.lastAudit()
	if audit.Status != entity.IngestStatusImported || audit.Summary != entity.SummaryImported || audit.ActorID != "admin-1" || audit.ExactBibleMatch {
		t.Fatalf("unexpected audit %+v", audit)
	}
}

func TestCommit_ReplacesChapterAndReusesLexemes(t *testing.T) {
	store := seededStore()
	uc := newTestIngestUsecase(store)
	ctx := context.Background()
	draft := entity.ChapterDraft{BookID: testBookID, ChapterNumber: 3, RawText: "ברא שלג\n\nשלג"}

	for round := 0; round < 2; round++ {
		analysis := analyzeForCommit(t, uc, draft)
		if _, err := uc.Commit(ctx, &entity.CommitRequest{Draft: draft, AnalysisDigest: analysis.Digest}); err != nil {
			t.Fatalf("round %d: Commit returned error: %v", round, err)
		}
		if got := len(store.chapterWords(draft.Key())); got != analysis.TokenCount {
			t.Fatalf("round %d: expected %d words, got %d", round, analysis.TokenCount, got)
		}
	}
	// the second round finds "ש" and "לג" as custom candidates
	if store.customCount() != 3 {
		t.Fatalf("expected custom lexemes to be reused, have %d", store.customCount())
	}
	if store.auditCount() != 2 {
		t.Fatalf("expected one audit per commit, have %d", store.auditCount())
	}
}

func TestCommit_SegmentationOverride(t *testing.T) {
	store := seededStore()
	uc := newTestIngestUsecase(store)
	ctx := context.Background()
	draft := entity.ChapterDraft{BookID: 2, ChapterNumber: 4, RawText: "בראשית ברא\n\nארץ"}

	automatic := analyzeForCommit(t, uc, draft)
	draft.SegmentationOverrides = map[string][]string{"1": {"ב", "ראשית", "ברא"}}
	overridden := analyzeForCommit(t, uc, draft)
	if overridden.Digest == automatic.Digest {
		t.Fatal("a segmentation override must change the digest")
	}

	if _, err := uc.Commit(ctx, &entity.CommitRequest{Draft: draft, AnalysisDigest: automatic.Digest}); entity.KindOf(err) != entity.KindStaleAnalysis {
		t.Fatalf("expected the pre-override digest to be stale, got %v", err)
	}
	result, err := uc.Commit(ctx, &entity.CommitRequest{Draft: draft, AnalysisDigest: overridden.Digest})
	if err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if result.Status != entity.IngestStatusImported {
		t.Fatalf("unexpected result %+v", result)
	}

	perVerse := map[int]int{}
	for _, w := range store.chapterWords(draft.Key()) {
		perVerse[w.Key.Verse]++
	}
	if perVerse[1] != 3 || perVerse[2] != 1 {
		t.Fatalf("expected 3 words in verse 1 and 1 in verse 2, got %v", perVerse)
	}
}

func TestCommit_StaleDigest(t *testing.T) {
	store := seededStore()
	uc := newTestIngestUsecase(store)
	draft := entity.ChapterDraft{BookID: testBookID, ChapterNumber: 3, RawText: "ברא"}

	_, err := uc.Commit(context.Background(), &entity.CommitRequest{Draft: draft, AnalysisDigest: "deadbeef"})
	if !errors.Is(err, entity.ErrStaleAnalysis) {
		t.Fatalf("expected stale analysis, got %v", err)
	}
	if err.Error() != "Analysis digest mismatch. Re-run Analyze before importing." {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if len(store.chapterWords(draft.Key())) != 0 {
		t.Fatal("stale commit must not write words")
	}
	if store.auditCount() != 1 || store.lastAudit().Status != entity.IngestStatusRejected {
		t.Fatalf("expected a single rejection audit, have %d", store.auditCount())
	}
}

func TestCommit_ExactMatchSkips(t *testing.T) {
	store := seededStore()
	uc := newTestIngestUsecase(store)
	draft := entity.ChapterDraft{BookID: testBookID, ChapterNumber: 1, RawText: "בראשית ברא אלהים\n\nוהארץ"}
	analysis := analyzeForCommit(t, uc, draft)

	result, err := uc.Commit(context.Background(), &entity.CommitRequest{
		Draft:          draft,
		AnalysisDigest: analysis.Digest,
		Overrides:      map[entity.TokenKey]entity.LexemeRef{{Verse: 9, Position: 9}: {Source: entity.LexemeSourceCustom, ID: "ignored"}},
	})
	if err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if !result.Skipped || result.Status != entity.IngestStatusSkippedExactMatch || !result.ExactBibleMatch || result.OverrideCount != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(store.chapterWords(draft.Key())) != 0 {
		t.Fatal("exact match must not write words")
	}
	audit := store.lastAudit()
	if audit.Summary != entity.SummarySkippedExactMatch || !audit.ExactBibleMatch {
		t.Fatalf("unexpected audit %+v", audit)
	}
}

func TestCommit_Overrides(t *testing.T) {
	store := seededStore()
	uc := newTestIngestUsecase(store)
	ctx := context.Background()
	draft := entity.ChapterDraft{BookID: testBookID, ChapterNumber: 4, RawText: "ברא ארץ"}
	analysis := analyzeForCommit(t, uc, draft)

	valid := map[entity.TokenKey]entity.LexemeRef{
		{Verse: 1, Position: 2}: {Source: entity.LexemeSourceCustom, ID: "cus-erets"},
	}
	result, err := uc.Commit(ctx, &entity.CommitRequest{Draft: draft, AnalysisDigest: analysis.Digest, Overrides: valid})
	if err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if result.OverrideCount != 1 {
		t.Fatalf("expected override count 1, got %d", result.OverrideCount)
	}
	words := store.chapterWords(draft.Key())
	if _, custom := words[1].Lexeme.Columns(); custom == nil || *custom != "cus-erets" {
		t.Fatalf("override not applied: %+v", words[1].Lexeme)
	}

	auditsBefore := store.auditCount()
	invalid := map[entity.TokenKey]entity.LexemeRef{
		{Verse: 1, Position: 1}: {Source: entity.LexemeSourceCustom, ID: "bib-bara"},
	}
	_, err = uc.Commit(ctx, &entity.CommitRequest{Draft: draft, AnalysisDigest: analysis.Digest, Overrides: invalid})
	if !errors.Is(err, entity.ErrInvalidOverride) {
		t.Fatalf("expected invalid override, got %v", err)
	}
	if err.Error() != "Invalid override for token 1:1" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	// previous import survives untouched
	after := store.chapterWords(draft.Key())
	if _, custom := after[1].Lexeme.Columns(); len(after) != 2 || custom == nil || *custom != "cus-erets" {
		t.Fatalf("failed commit altered the chapter: %+v", after)
	}
	if store.auditCount() != auditsBefore+1 || store.lastAudit().Status != entity.IngestStatusRejected {
		t.Fatal("expected exactly one rejection audit")
	}
}

func TestCommit_RollsBackOnStorageFailure(t *testing.T) {
	store := seededStore()
	uc := newTestIngestUsecase(store)
	draft := entity.ChapterDraft{BookID: testBookID, ChapterNumber: 6, RawText: "ברא אלהים\n\nשלג"}
	analysis := analyzeForCommit(t, uc, draft)
	store.failWordAfter = 3

	_, err := uc.Commit(context.Background(), &entity.CommitRequest{Draft: draft, AnalysisDigest: analysis.Digest})
	if err == nil || entity.KindOf(err) != entity.KindStorage {
		t.Fatalf("expected storage error, got %v", err)
	}
	if len(store.chapterWords(draft.Key())) != 0 {
		t.Fatal("partial chapter must be rolled back")
	}
	if store.customCount() != 1 {
		t.Fatal("custom lexemes created in the failed transaction must be rolled back")
	}
	if store.auditCount() != 0 {
		t.Fatal("no audit may survive a rolled back import")
	}
}

func TestCommit_UnknownBook(t *testing.T) {
	store := seededStore()
	uc := newTestIngestUsecase(store)
	draft := entity.ChapterDraft{BookID: 77, ChapterNumber: 1, RawText: "ברא"}
	analysis := analyzeForCommit(t, uc, draft)

	_, err := uc.Commit(context.Background(), &entity.CommitRequest{Draft: draft, AnalysisDigest: analysis.Digest})
	if !errors.Is(err, entity.ErrBookNotFound) {
		t.Fatalf("expected book not found, got %v", err)
	}
}

func TestCommit_MissingDigest(t *testing.T) {
	uc := newTestIngestUsecase(seededStore())
	_, err := uc.Commit(context.Background(), &entity.CommitRequest{Draft: entity.ChapterDraft{BookID: 1, ChapterNumber: 1, RawText: "ברא"}})
	if entity.KindOf(err) != entity.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCommit_ConcurrentSameChapter(t *testing.T) {
	store := seededStore()
	uc := newTestIngestUsecase(store)
	draft := entity.ChapterDraft{BookID: testBookID, ChapterNumber: 8, RawText: "ברא שלג\n\nאלהים"}
	analysis := analyzeForCommit(t, uc, draft)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Commit(context.Background(), &entity.CommitRequest{Draft: draft, AnalysisDigest: analysis.Digest})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent commit failed: %v", err)
		}
	}
	if got := len(store.chapterWords(draft.Key())); got != analysis.TokenCount {
		t.Fatalf("expected %d words after concurrent commits, got %d", analysis.TokenCount, got)
	}
	if store.customCount() != 3 {
		t.Fatalf("custom lexemes duplicated: %d", store.customCount())
	}
}
