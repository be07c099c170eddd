// Package gen translates a schema.ProtoFile into Go source implementing
// wire.Marshaler/wire.Unmarshaler for every message it declares. The four
// emission passes below (struct, EstimateSize, Encode, Decode) mirror
// original_source/src/minipb_generator.cpp's EmitStructure/EmitEstimateSize/
// EmitEncode/EmitDecode, translated from C++ header/impl output to a single
// Go file per .proto file.
package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"

	"github.com/minipb/minipb/schema"
)

// flatMessage pairs a message with the Go type name it flattens to: nested
// messages lose their nesting and become ParentGoName_ChildName at the
// package level, the same convention protoc-gen-go uses for nested types.
type flatMessage struct {
	goName   string
	fullName string // package-qualified proto name, matches registry.GetMessage's keys
	msg      *schema.Message
}

// genState tracks facts discovered while emitting message bodies that the
// header (built last) needs, namely whether any packed float/double field
// forced a manual math.Float32bits/Float64bits bit-cast into the output.
type genState struct {
	needsMath bool
}

// Generate renders a complete Go source file for protoFile's messages.
// goPackage is the package clause of the generated file.
func Generate(goPackage string, protoFile *schema.ProtoFile) ([]byte, error) {
	flat, byFullName := flatten(protoFile)
	goTypeName := func(fullName string) string {
		if fm, ok := byFullName[fullName]; ok {
			return fm.goName
		}
		return fullName // left for the caller to fail the build on
	}

	var body bytes.Buffer
	emit := func(format string, args ...any) { fmt.Fprintf(&body, format+"\n", args...) }
	st := &genState{}

	for _, fm := range flat {
		if err := emitStructure(emit, fm, goTypeName); err != nil {
			return nil, err
		}
	}
	for _, fm := range flat {
		if err := emitEstimateSize(emit, fm); err != nil {
			return nil, err
		}
		if err := emitEncode(emit, st, fm); err != nil {
			return nil, err
		}
		if err := emitDecode(emit, fm, goTypeName); err != nil {
			return nil, err
		}
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "// Code generated by minipbc. DO NOT EDIT.\n")
	fmt.Fprintf(&out, "// source: %s\n", protoFile.Name)
	fmt.Fprintf(&out, "package %s\n\n", goPackage)
	if st.needsMath {
		fmt.Fprintf(&out, "import (\n\t\"math\"\n\n\t\"github.com/minipb/minipb/wire\"\n)\n\n")
	} else {
		fmt.Fprintf(&out, "import \"github.com/minipb/minipb/wire\"\n\n")
	}
	out.Write(body.Bytes())

	return format.Source(out.Bytes())
}

func flatten(protoFile *schema.ProtoFile) ([]*flatMessage, map[string]*flatMessage) {
	var flat []*flatMessage
	byFullName := make(map[string]*flatMessage)

	var walk func(pkg, goPrefix, fullPrefix string, msgs []*schema.Message)
	walk = func(pkg, goPrefix, fullPrefix string, msgs []*schema.Message) {
		for _, m := range msgs {
			goName := m.Name
			if goPrefix != "" {
				goName = goPrefix + "_" + m.Name
			}
			fullName := m.Name
			if fullPrefix != "" {
				fullName = fullPrefix + "." + m.Name
			} else if pkg != "" {
				fullName = pkg + "." + m.Name
			}
			fm := &flatMessage{goName: goName, fullName: fullName, msg: m}
			flat = append(flat, fm)
			byFullName[fullName] = fm
			walk(pkg, goName, fullName, m.NestedTypes)
		}
	}
	walk(protoFile.Package, "", "", protoFile.Messages)
	return flat, byFullName
}

func emitStructure(emit func(string, ...any), fm *flatMessage, goTypeName func(string) string) error {
	emit("type %s struct {", fm.goName)
	for _, f := range fm.msg.Fields {
		goType, err := fieldGoType(f, goTypeName)
		if err != nil {
			return err
		}
		if f.Type.EnumTypeName != "" {
			emit("\t%s %s // enum %s", exportedName(f.Name), goType, f.Type.EnumTypeName)
			continue
		}
		emit("\t%s %s", exportedName(f.Name), goType)
	}
	emit("}")
	emit("")
	return nil
}

// exportedName turns a snake_case proto field name into an exported Go
// identifier, e.g. user_id -> UserId.
func exportedName(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}
