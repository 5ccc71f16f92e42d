package plist

import "testing"

const xmlPlistFixture = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>name</key>
	<string>Maria</string>
	<key>count</key>
	<integer>3</integer>
	<key>ratio</key>
	<real>0.5</real>
	<key>active</key>
	<true/>
	<key>tags</key>
	<array>
		<string>a</string>
		<string>b</string>
	</array>
</dict>
</plist>`

func TestDecodeXMLPlist(t *testing.T) {
	v, err := Decode([]byte(xmlPlistFixture))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	name, err := v.Get("name").AsString()
	if err != nil || name != "Maria" {
		t.Fatalf("name = %q, err = %v", name, err)
	}

	count, err := v.Get("count").AsInt()
	if err != nil || count != 3 {
		t.Fatalf("count = %d, err = %v", count, err)
	}

	active, err := v.Get("active").AsBool()
	if err != nil || !active {
		t.Fatalf("active = %v, err = %v", active, err)
	}

	tags, err := v.Get("tags").AsList()
	if err != nil || len(tags) != 2 {
		t.Fatalf("tags = %v, err = %v", tags, err)
	}
}

func TestDecodeWrongKindReturnsTypedError(t *testing.T) {
	v, err := Decode([]byte(xmlPlistFixture))
	if err != nil {
		t.Fatal(err)
	}
	_, err = v.Get("name").AsInt()
	if err == nil {
		t.Fatal("expected ErrWrongKind for string accessed as int")
	}
	var wrongKind *ErrWrongKind
	if !asErrWrongKind(err, &wrongKind) {
		t.Fatalf("expected *ErrWrongKind, got %T: %v", err, err)
	}
}

func asErrWrongKind(err error, target **ErrWrongKind) bool {
	if e, ok := err.(*ErrWrongKind); ok {
		*target = e
		return true
	}
	return false
}

// uid builds a CF$UID back-reference value the way howett.net/plist decodes
// one: a single-key dict.
func uid(index int64) Value {
	return Dict(map[string]Value{uidKey: Int(index)})
}

func TestResolveKeyedArchiveSimpleGraph(t *testing.T) {
	// $objects[0] is the root dict: {"$class": uid(2), "name": "edit"}
	// $objects[1] is unused filler so the class sits at index 2.
	// $objects[2] is the class dict: {"$classname": "PLEditOperation"}
	root := Dict(map[string]Value{
		"$archiver": String("NSKeyedArchiver"),
		"$version":  Int(100000),
		"$top": Dict(map[string]Value{
			"root": uid(0),
		}),
		"$objects": List([]Value{
			Dict(map[string]Value{
				"$class": uid(2),
				"name":   String("edit"),
			}),
			Null(),
			Dict(map[string]Value{
				"$classname": String("PLEditOperation"),
			}),
		}),
	})

	archived, err := ResolveKeyedArchive(root)
	if err != nil {
		t.Fatalf("ResolveKeyedArchive: %v", err)
	}
	if archived.ClassName != "PLEditOperation" {
		t.Fatalf("expected class PLEditOperation, got %q", archived.ClassName)
	}
	name, err := archived.Fields["name"].AsString()
	if err != nil || name != "edit" {
		t.Fatalf("name field = %q, err = %v", name, err)
	}
}

func TestResolveKeyedArchiveCycleYieldsPlaceholder(t *testing.T) {
	// $objects[0] references itself through "self".
	root := Dict(map[string]Value{
		"$top": Dict(map[string]Value{"root": uid(0)}),
		"$objects": List([]Value{
			Dict(map[string]Value{
				"self": uid(0),
			}),
		}),
	})

	archived, err := ResolveKeyedArchive(root)
	if err != nil {
		t.Fatalf("ResolveKeyedArchive: %v", err)
	}
	selfField := archived.Fields["self"]
	d, err := selfField.AsDict()
	if err != nil {
		t.Fatalf("expected self field to resolve to a dict placeholder, got %v: %v", selfField, err)
	}
	class, _ := d["$class"].AsString()
	if class != cyclePlaceholderClass {
		t.Fatalf("expected cycle placeholder class, got %q", class)
	}
}

func TestResolveKeyedArchiveUnknownClassPreservesRawDict(t *testing.T) {
	root := Dict(map[string]Value{
		"$top": Dict(map[string]Value{"root": uid(0)}),
		"$objects": List([]Value{
			Dict(map[string]Value{
				"mystery": String("value"),
			}),
		}),
	})

	archived, err := ResolveKeyedArchive(root)
	if err != nil {
		t.Fatalf("ResolveKeyedArchive: %v", err)
	}
	if archived.ClassName != rawDictClass {
		t.Fatalf("expected raw-dict fallback for unknown class, got %q", archived.ClassName)
	}
	s, err := archived.Fields["mystery"].AsString()
	if err != nil || s != "value" {
		t.Fatalf("mystery field = %q, err = %v", s, err)
	}
}
