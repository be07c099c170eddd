package registry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/minipb/minipb/schema"
	"github.com/yoheimuta/go-protoparser/v4/parser"
)

var primitiveTypes = map[string]schema.PrimitiveType{
	"double":   schema.TypeDouble,
	"float":    schema.TypeFloat,
	"int32":    schema.TypeInt32,
	"int64":    schema.TypeInt64,
	"uint32":   schema.TypeUint32,
	"uint64":   schema.TypeUint64,
	"sint32":   schema.TypeSint32,
	"sint64":   schema.TypeSint64,
	"fixed32":  schema.TypeFixed32,
	"fixed64":  schema.TypeFixed64,
	"sfixed32": schema.TypeSfixed32,
	"sfixed64": schema.TypeSfixed64,
	"bool":     schema.TypeBool,
	"string":   schema.TypeString,
	"bytes":    schema.TypeBytes,
}

// convertProtoFile walks a parsed .proto AST into a schema.ProtoFile. Groups,
// oneof groups, map fields, and extensions are rejected outright: the
// generator has no way to emit them (spec.md §4.6 "Unsupported constructs").
func convertProtoFile(name string, proto *parser.Proto) (*schema.ProtoFile, error) {
	pf := &schema.ProtoFile{
		Name:   name,
		Syntax: "proto3",
	}
	if proto.Syntax != nil {
		pf.Syntax = strings.Trim(proto.Syntax.ProtobufVersion, `"`)
	}
	if pf.Syntax != "proto3" {
		return nil, fmt.Errorf("%s: only proto3 is supported, found %q", name, pf.Syntax)
	}

	for _, v := range proto.ProtoBody {
		switch b := v.(type) {
		case *parser.Package:
			pf.Package = b.Name
		case *parser.Import:
			pf.Imports = append(pf.Imports, &schema.Import{
				Path:   strings.Trim(b.Location, `"`),
				Public: b.Modifier == parser.ImportModifierPublic,
				Weak:   b.Modifier == parser.ImportModifierWeak,
			})
		case *parser.Message:
			msg, err := convertMessage(b)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			pf.Messages = append(pf.Messages, msg)
		case *parser.Enum:
			// Enums are not a first-class generated type (Non-goal); fields
			// referencing one decode/encode as int32 and need no descriptor.
		case *parser.Service:
			// RPC service definitions carry no wire encoding of their own.
		case *parser.Extend:
			return nil, fmt.Errorf("%s: extensions are not supported", name)
		}
	}
	return pf, nil
}

func convertMessage(m *parser.Message) (*schema.Message, error) {
	msg := &schema.Message{Name: m.MessageName}
	for _, v := range m.MessageBody {
		switch b := v.(type) {
		case *parser.Field:
			f, err := convertField(b)
			if err != nil {
				return nil, fmt.Errorf("message %s: %w", m.MessageName, err)
			}
			msg.Fields = append(msg.Fields, f)
		case *parser.Message:
			nested, err := convertMessage(b)
			if err != nil {
				return nil, err
			}
			msg.NestedTypes = append(msg.NestedTypes, nested)
		case *parser.Enum:
			// nested enum: same reasoning as top-level enums above.
		case *parser.Oneof:
			return nil, fmt.Errorf("message %s: oneof fields are not supported", m.MessageName)
		case *parser.MapField:
			return nil, fmt.Errorf("message %s: map fields are not supported", m.MessageName)
		case *parser.GroupField:
			return nil, fmt.Errorf("message %s: groups are not supported", m.MessageName)
		case *parser.Extend:
			return nil, fmt.Errorf("message %s: extensions are not supported", m.MessageName)
		}
	}
	return msg, nil
}

func convertField(f *parser.Field) (*schema.Field, error) {
	number, err := strconv.Atoi(f.FieldNumber)
	if err != nil {
		return nil, fmt.Errorf("field %s: invalid field number %q: %w", f.FieldName, f.FieldNumber, err)
	}

	field := &schema.Field{
		Name:     f.FieldName,
		Number:   int32(number),
		JsonName: jsonName(f.FieldName),
		Label:    schema.LabelSingular,
	}
	if f.IsRepeated {
		field.Label = schema.LabelRepeated
	}

	if prim, ok := primitiveTypes[f.Type]; ok {
		field.Type = schema.FieldType{Kind: schema.KindPrimitive, PrimitiveType: prim}
	} else {
		// Either a message or an enum type name; resolved against the
		// registry's symbol table in a later pass since forward references
		// and imports mean it cannot always be settled here. Enum fields
		// are rewritten to PrimitiveType Int32 once the registry confirms
		// the name refers to an enum (schema §2 "enums decode as int32").
		field.Type = schema.FieldType{Kind: schema.KindMessage, MessageType: f.Type}
	}

	field.Packed = field.Label == schema.LabelRepeated &&
		field.Type.Kind == schema.KindPrimitive &&
		schema.IsPackedType(field.Type.PrimitiveType)
	for _, opt := range f.FieldOptions {
		if opt.OptionName == "packed" {
			field.Packed = strings.Trim(opt.Constant, `"`) == "true"
		}
	}
	return field, nil
}

func jsonName(fieldName string) string {
	parts := strings.Split(fieldName, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}
		parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
	}
	return strings.Join(parts, "")
}
