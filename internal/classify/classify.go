package classify

import (
    "fmt"
    "strings"
)

// CatchAll is returned whenever an issue matches no configured category.
const CatchAll = "OTHERS"

const (
    SourceLabels      = "labels"
    SourceComponents  = "components"
    SourceCustomField = "customfield"
)

// Resolver maps one issue's fields to exactly one category. It never fails:
// missing or malformed data degrades to CatchAll.
type Resolver struct {
    source    string
    fieldID   string
    primaries []string
}

func New(source, fieldID string, primaries []string) *Resolver {
    up := make([]string, 0, len(primaries))
    for _, p := range primaries {
        p = strings.ToUpper(strings.TrimSpace(p))
        if p == "" { continue }
        up = append(up, p)
    }
    return &Resolver{source: strings.ToLower(source), fieldID: fieldID, primaries: up}
}

// Primaries returns the configured category codes in order.
func (r *Resolver) Primaries() []string { return append([]string(nil), r.primaries...) }

func (r *Resolver) Resolve(fields map[string]any) string {
    switch r.source {
    case SourceLabels:
        return r.fromLabels(fields["labels"])
    case SourceComponents:
        return r.fromComponents(fields["components"])
    case SourceCustomField:
        if r.fieldID == "" { return CatchAll }
        return r.fromField(fields[r.fieldID])
    default:
        return CatchAll
    }
}

func (r *Resolver) fromLabels(v any) string {
    set := map[string]struct{}{}
    if arr, ok := v.([]any); ok {
        for _, x := range arr {
            if s, ok := x.(string); ok { set[strings.ToUpper(s)] = struct{}{} }
        }
    }
    for _, c := range r.primaries {
        if _, ok := set[c]; ok { return c }
    }
    return CatchAll
}

func (r *Resolver) fromComponents(v any) string {
    var names []string
    if arr, ok := v.([]any); ok {
        for _, x := range arr {
            if m, ok := x.(map[string]any); ok {
                if n, ok := m["name"].(string); ok { names = append(names, strings.ToUpper(n)) }
            }
        }
    }
    // short codes match either a component name or a substring of one
    for _, c := range r.primaries {
        for _, n := range names {
            if n == c || strings.Contains(n, c) { return c }
        }
    }
    return CatchAll
}

func (r *Resolver) fromField(v any) string {
    name := strings.ToUpper(decodeField(v).String())
    for _, c := range r.primaries {
        if name == c { return c }
    }
    return CatchAll
}

// Jira custom fields arrive in three shapes: a tagged option object, a list,
// or a plain scalar. fieldValue pins the shape down once so resolution does
// not re-inspect types.
type fieldKind int

const (
    fieldAbsent fieldKind = iota
    fieldOption
    fieldList
    fieldScalar
)

type fieldValue struct {
    kind   fieldKind
    option map[string]any
    list   []any
    scalar any
}

func decodeField(v any) fieldValue {
    switch t := v.(type) {
    case nil:
        return fieldValue{kind: fieldAbsent}
    case map[string]any:
        return fieldValue{kind: fieldOption, option: t}
    case []any:
        if len(t) == 0 { return fieldValue{kind: fieldAbsent} }
        return fieldValue{kind: fieldList, list: t}
    default:
        return fieldValue{kind: fieldScalar, scalar: t}
    }
}

func (f fieldValue) String() string {
    switch f.kind {
    case fieldOption:
        if s, ok := f.option["value"].(string); ok { return s }
        if s, ok := f.option["name"].(string); ok { return s }
        return ""
    case fieldList:
        return decodeField(f.list[0]).String()
    case fieldScalar:
        if s, ok := f.scalar.(string); ok { return s }
        return fmt.Sprintf("%v", f.scalar)
    default:
        return ""
    }
}
