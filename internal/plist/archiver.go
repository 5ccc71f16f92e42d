package plist

import "fmt"

// Archived is a materialized node from an NSKeyedArchiver object graph. Its
// discriminant is the archived Objective-C class name, kept for every class
// the archive names; there is no list of known classes. A dict with no
// resolvable "$class" decodes to "$rawdict" with Fields preserving the
// underlying dict rather than failing the load (§4.C.3).
type Archived struct {
	// ClassName is the archived class, or "$rawdict" for class-less dicts
	// and primitive nodes, or "$cycle" for a back-reference to a node still
	// being resolved (design notes §9).
	ClassName string
	Fields    map[string]Value
	// Scalar holds the value directly for archived nodes that aren't dicts
	// (e.g. an archived NSString or NSNumber uses this instead of Fields).
	Scalar Value
}

const cyclePlaceholderClass = "$cycle"
const rawDictClass = "$rawdict"

// uidKey is the dict key howett.net/plist (and the format itself) uses to
// represent a CF$UID back-reference.
const uidKey = "CF$UID"

// ResolveKeyedArchive interprets a decoded NSKeyedArchiver plist (the
// standard "$archiver"/"$objects"/"$top"/"$version" shape) and returns the
// resolved root object graph rooted at "$top"."root". Cyclic and shared
// subgraphs are resolved through the object table by position rather than
// by structural recursion (design notes §9): a node whose resolution is
// already in progress yields a "$cycle" placeholder instead of recursing
// forever.
func ResolveKeyedArchive(root Value) (*Archived, error) {
	objects, err := root.Get("$objects").AsList()
	if err != nil {
		return nil, fmt.Errorf("plist: keyed archive missing $objects array: %w", err)
	}

	top, err := root.Get("$top").AsDict()
	if err != nil {
		return nil, fmt.Errorf("plist: keyed archive missing $top dict: %w", err)
	}
	rootRef, ok := top["root"]
	if !ok {
		// Some archives name the root entry something other than "root";
		// fall back to the first (and usually only) $top entry.
		for _, v := range top {
			rootRef = v
			break
		}
	}

	r := &archiveResolver{objects: objects, state: make([]resolveState, len(objects)), cache: make([]*Archived, len(objects))}
	return r.resolveRef(rootRef)
}

type resolveState int

const (
	stateUnresolved resolveState = iota
	stateInProgress
	stateResolved
)

type archiveResolver struct {
	objects []Value
	state   []resolveState
	cache   []*Archived
}

func (r *archiveResolver) resolveRef(v Value) (*Archived, error) {
	idx, isRef := uidIndex(v)
	if !isRef {
		// Not a reference: treat the value itself as an inline leaf node.
		return r.materialize(v)
	}
	if idx < 0 || idx >= len(r.objects) {
		return nil, fmt.Errorf("plist: keyed archive CF$UID %d out of range (have %d objects)", idx, len(r.objects))
	}

	switch r.state[idx] {
	case stateResolved:
		return r.cache[idx], nil
	case stateInProgress:
		return &Archived{ClassName: cyclePlaceholderClass}, nil
	}

	r.state[idx] = stateInProgress
	resolved, err := r.materialize(r.objects[idx])
	if err != nil {
		return nil, err
	}
	r.state[idx] = stateResolved
	r.cache[idx] = resolved
	return resolved, nil
}

func uidIndex(v Value) (int, bool) {
	d, err := v.AsDict()
	if err != nil || len(d) != 1 {
		return 0, false
	}
	raw, ok := d[uidKey]
	if !ok {
		return 0, false
	}
	i, err := raw.AsInt()
	if err != nil {
		return 0, false
	}
	return int(i), true
}

// materialize converts one object-table entry into an Archived node,
// resolving any CF$UID references it directly contains.
func (r *archiveResolver) materialize(v Value) (*Archived, error) {
	switch v.Kind {
	case KindDict:
		d, _ := v.AsDict()
		classRef, hasClass := d["$class"]
		fields := make(map[string]Value, len(d))
		for k, val := range d {
			if k == "$class" {
				continue
			}
			resolvedChild, err := r.resolveChildValue(val)
			if err != nil {
				return nil, err
			}
			fields[k] = resolvedChild
		}

		className := rawDictClass
		if hasClass {
			if classArchived, err := r.resolveRef(classRef); err == nil && classArchived != nil {
				if name, ok := classArchived.Fields["$classname"]; ok {
					if s, err := name.AsString(); err == nil {
						className = s
					}
				}
			}
		}
		return &Archived{ClassName: className, Fields: fields}, nil
	case KindList:
		items, _ := v.AsList()
		resolvedList := make([]Value, len(items))
		for i, item := range items {
			child, err := r.resolveChildValue(item)
			if err != nil {
				return nil, err
			}
			resolvedList[i] = archivedToValue(child)
		}
		return &Archived{ClassName: rawDictClass, Scalar: List(resolvedList)}, nil
	default:
		return &Archived{ClassName: rawDictClass, Scalar: v}, nil
	}
}

// resolveChildValue resolves a field value one level deep: if it is itself
// a CF$UID reference, follow it and flatten back into a plain Value so
// downstream per-generation extractors can keep treating fields uniformly
// as Values, with nested archived structure available through
// archivedToValue when needed.
func (r *archiveResolver) resolveChildValue(v Value) (Value, error) {
	if _, isRef := uidIndex(v); !isRef {
		return v, nil
	}
	child, err := r.resolveRef(v)
	if err != nil {
		return Null(), err
	}
	return archivedToValue(child), nil
}

// archivedToValue flattens a resolved Archived node back into a Value tree,
// preserving class name under the "$class" key so callers that care can
// still discriminate.
func archivedToValue(a *Archived) Value {
	if a == nil {
		return Null()
	}
	if a.ClassName == rawDictClass && a.Fields == nil {
		return a.Scalar
	}
	d := make(map[string]Value, len(a.Fields)+1)
	for k, v := range a.Fields {
		d[k] = v
	}
	d["$class"] = String(a.ClassName)
	return Dict(d)
}
