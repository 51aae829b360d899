// Package filterexpr turns the CEL subset accepted by list endpoints into
// typed query parameters. Only conjunctions of simple comparisons between an
// identifier and a literal are understood.
package filterexpr

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Request exposes the raw filter and order_by inputs of a list call.
type Request interface {
	GetFilter() string
	GetOrderBy() string
}

// Kind is the literal type a filter field accepts.
type Kind int

const (
	KindString Kind = iota + 1
	KindInt
	KindTimestamp
)

// Op is a comparison supported in filters.
type Op string

const (
	OpEQ  Op = "=="
	OpGTE Op = ">="
	OpLTE Op = "<="
	OpIN  Op = "in"
)

// Field describes one filterable identifier. Targets maps each allowed
// operator to the name of the destination struct field.
type Field struct {
	Kind    Kind
	Targets map[Op]string
}

// Schema aggregates the filter and ordering rules of a resource.
type Schema struct {
	Filter map[string]Field
	Order  OrderSchema
}

// Predicate is one `field op literal` conjunct of a filter.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// Bind compiles the request filter into dest and returns the validated
// ordering. dest must be a pointer to a struct.
func Bind(req Request, dest any, schema Schema) ([]OrderTerm, error) {
	target, err := structTarget(dest)
	if err != nil {
		return nil, err
	}

	preds, err := Compile(req.GetFilter(), schema.Filter)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	for _, pred := range preds {
		name := schema.Filter[pred.Field].Targets[pred.Op]
		if err := assign(target, name, pred.Value); err != nil {
			return nil, fmt.Errorf("filter %s: %w", pred.Field, err)
		}
	}

	terms, err := ParseOrderBy(req.GetOrderBy(), schema.Order)
	if err != nil {
		return nil, fmt.Errorf("order_by: %w", err)
	}
	return terms, nil
}

// Compile parses filter and checks every conjunct against fields.
func Compile(filter string, fields map[string]Field) ([]Predicate, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, nil
	}
	if len(fields) == 0 {
		return nil, errors.New("resource has no filterable fields")
	}

	opts := make([]cel.EnvOption, 0, len(fields))
	for name, f := range fields {
		typ, err := celType(f.Kind)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		opts = append(opts, cel.Variable(name, typ))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, err
	}

	ast, issues := env.Parse(filter)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid filter: %w", issues.Err())
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, fmt.Errorf("convert ast: %w", err)
	}

	var conjuncts []*exprpb.Expr
	if err := flattenAnd(parsed.GetExpr(), &conjuncts); err != nil {
		return nil, err
	}

	preds := make([]Predicate, 0, len(conjuncts))
	for _, expr := range conjuncts {
		pred, err := predicateOf(expr)
		if err != nil {
			return nil, err
		}
		f, ok := fields[pred.Field]
		if !ok {
			return nil, fmt.Errorf("field %q is not filterable", pred.Field)
		}
		if _, ok := f.Targets[pred.Op]; !ok {
			return nil, fmt.Errorf("operator %q is not allowed for field %q", pred.Op, pred.Field)
		}
		if err := checkKind(f.Kind, pred); err != nil {
			return nil, fmt.Errorf("field %q: %w", pred.Field, err)
		}
		preds = append(preds, pred)
	}
	return preds, nil
}

func celType(kind Kind) (*cel.Type, error) {
	switch kind {
	case KindString:
		return cel.StringType, nil
	case KindInt:
		return cel.IntType, nil
	case KindTimestamp:
		return cel.TimestampType, nil
	}
	return nil, fmt.Errorf("unknown kind %d", kind)
}

func flattenAnd(expr *exprpb.Expr, out *[]*exprpb.Expr) error {
	if expr == nil {
		return errors.New("empty expression")
	}
	call := expr.GetCallExpr()
	if call == nil {
		*out = append(*out, expr)
		return nil
	}
	switch call.GetFunction() {
	case "_&&_":
		for _, arg := range call.GetArgs() {
			if err := flattenAnd(arg, out); err != nil {
				return err
			}
		}
		return nil
	case "_||_", "!_", "_?_:_":
		return fmt.Errorf("operator %q is not supported, combine conditions with &&", call.GetFunction())
	}
	*out = append(*out, expr)
	return nil
}

func predicateOf(expr *exprpb.Expr) (Predicate, error) {
	call := expr.GetCallExpr()
	if call == nil || call.GetTarget() != nil || len(call.GetArgs()) != 2 {
		return Predicate{}, errors.New("expected a comparison between a field and a literal")
	}

	var op Op
	switch call.GetFunction() {
	case "_==_":
		op = OpEQ
	case "_>=_":
		op = OpGTE
	case "_<=_":
		op = OpLTE
	case "@in":
		op = OpIN
	default:
		return Predicate{}, fmt.Errorf("function %q is not supported", call.GetFunction())
	}

	ident := call.GetArgs()[0].GetIdentExpr()
	if ident == nil {
		return Predicate{}, errors.New("left-hand side must be a field name")
	}
	value, err := literal(call.GetArgs()[1])
	if err != nil {
		return Predicate{}, err
	}
	return Predicate{Field: ident.GetName(), Op: op, Value: value}, nil
}

func literal(expr *exprpb.Expr) (any, error) {
	if c := expr.GetConstExpr(); c != nil {
		switch v := c.GetConstantKind().(type) {
		case *exprpb.Constant_StringValue:
			return v.StringValue, nil
		case *exprpb.Constant_Int64Value:
			return v.Int64Value, nil
		case *exprpb.Constant_Uint64Value:
			return int64(v.Uint64Value), nil
		}
		return nil, fmt.Errorf("literal %T is not supported", c.GetConstantKind())
	}

	if list := expr.GetListExpr(); list != nil {
		items := make([]any, 0, len(list.GetElements()))
		for i, elem := range list.GetElements() {
			v, err := literal(elem)
			if err != nil {
				return nil, fmt.Errorf("list element %d: %w", i, err)
			}
			items = append(items, v)
		}
		return items, nil
	}

	if call := expr.GetCallExpr(); call != nil && call.GetFunction() == "timestamp" && len(call.GetArgs()) == 1 {
		raw := call.GetArgs()[0].GetConstExpr().GetStringValue()
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("timestamp %q is not RFC3339", raw)
		}
		return ts, nil
	}

	return nil, errors.New("right-hand side must be a literal, a list literal or timestamp()")
}

func checkKind(kind Kind, pred Predicate) error {
	if pred.Op == OpIN {
		items, ok := pred.Value.([]any)
		if !ok || len(items) == 0 {
			return errors.New("in expects a non-empty list")
		}
		for _, item := range items {
			if err := checkScalar(kind, item); err != nil {
				return err
			}
		}
		return nil
	}
	return checkScalar(kind, pred.Value)
}

func checkScalar(kind Kind, v any) error {
	var ok bool
	switch kind {
	case KindString:
		_, ok = v.(string)
	case KindInt:
		_, ok = v.(int64)
	case KindTimestamp:
		_, ok = v.(time.Time)
	}
	if !ok {
		return fmt.Errorf("literal %v has the wrong type", v)
	}
	return nil
}

func structTarget(dest any) (reflect.Value, error) {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, errors.New("destination must be a non-nil pointer to a struct")
	}
	return rv.Elem(), nil
}

// assign stores value into the named field. Pointer fields are allocated,
// slice fields receive list literals.
func assign(target reflect.Value, name string, value any) error {
	field := target.FieldByName(name)
	if !field.IsValid() || !field.CanSet() {
		return fmt.Errorf("%s has no settable field %q", target.Type(), name)
	}
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		field = field.Elem()
	}

	if items, ok := value.([]any); ok {
		if field.Kind() != reflect.Slice {
			return fmt.Errorf("field %q cannot hold a list", name)
		}
		out := reflect.MakeSlice(field.Type(), 0, len(items))
		for _, item := range items {
			elem := reflect.New(field.Type().Elem()).Elem()
			if err := setScalar(elem, item); err != nil {
				return fmt.Errorf("field %q: %w", name, err)
			}
			out = reflect.Append(out, elem)
		}
		field.Set(out)
		return nil
	}
	if err := setScalar(field, value); err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	return nil
}

func setScalar(field reflect.Value, value any) error {
	switch v := value.(type) {
	case string:
		if field.Kind() != reflect.String {
			return fmt.Errorf("cannot store string in %s", field.Type())
		}
		field.SetString(v)
	case int64:
		switch field.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if field.OverflowInt(v) {
				return fmt.Errorf("value %d overflows %s", v, field.Type())
			}
			field.SetInt(v)
		default:
			return fmt.Errorf("cannot store integer in %s", field.Type())
		}
	case time.Time:
		if field.Type() != reflect.TypeOf(time.Time{}) {
			return fmt.Errorf("cannot store timestamp in %s", field.Type())
		}
		field.Set(reflect.ValueOf(v))
	default:
		return fmt.Errorf("unsupported literal %T", value)
	}
	return nil
}
