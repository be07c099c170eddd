package registry

import (
	"fmt"
	"strings"

	"github.com/minipb/minipb/schema"
	"google.golang.org/protobuf/types/descriptorpb"
)

var descriptorPrimitiveTypes = map[descriptorpb.FieldDescriptorProto_Type]schema.PrimitiveType{
	descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:   schema.TypeDouble,
	descriptorpb.FieldDescriptorProto_TYPE_FLOAT:    schema.TypeFloat,
	descriptorpb.FieldDescriptorProto_TYPE_INT64:    schema.TypeInt64,
	descriptorpb.FieldDescriptorProto_TYPE_UINT64:   schema.TypeUint64,
	descriptorpb.FieldDescriptorProto_TYPE_INT32:    schema.TypeInt32,
	descriptorpb.FieldDescriptorProto_TYPE_FIXED64:  schema.TypeFixed64,
	descriptorpb.FieldDescriptorProto_TYPE_FIXED32:  schema.TypeFixed32,
	descriptorpb.FieldDescriptorProto_TYPE_BOOL:     schema.TypeBool,
	descriptorpb.FieldDescriptorProto_TYPE_STRING:   schema.TypeString,
	descriptorpb.FieldDescriptorProto_TYPE_BYTES:    schema.TypeBytes,
	descriptorpb.FieldDescriptorProto_TYPE_UINT32:   schema.TypeUint32,
	descriptorpb.FieldDescriptorProto_TYPE_SFIXED32: schema.TypeSfixed32,
	descriptorpb.FieldDescriptorProto_TYPE_SFIXED64: schema.TypeSfixed64,
	descriptorpb.FieldDescriptorProto_TYPE_SINT32:   schema.TypeSint32,
	descriptorpb.FieldDescriptorProto_TYPE_SINT64:   schema.TypeSint64,
}

// LoadFileDescriptor converts a single FileDescriptorProto (already
// resolved with its dependencies by the protoc frontend, per spec.md §6's
// plugin protocol) into the registry's symbol table. Call once per file in
// a CodeGeneratorRequest, in the order CodeGeneratorRequest.ProtoFile
// lists them, so that every dependency has been loaded first.
func (r *Registry) LoadFileDescriptor(fd *descriptorpb.FileDescriptorProto) error {
	if r.messages == nil {
		r.messages = make(map[string]*schema.Message)
	}
	if fd.GetSyntax() != "" && fd.GetSyntax() != "proto3" {
		return fmt.Errorf("%s: only proto3 is supported, found %q", fd.GetName(), fd.GetSyntax())
	}
	if len(fd.Extension) > 0 {
		return fmt.Errorf("%s: extensions are not supported", fd.GetName())
	}

	pkg := fd.GetPackage()
	msgs := make([]*schema.Message, 0, len(fd.MessageType))
	for _, dm := range fd.MessageType {
		msg, err := convertDescriptorMessage(dm)
		if err != nil {
			return fmt.Errorf("%s: %w", fd.GetName(), err)
		}
		msgs = append(msgs, msg)
	}
	if err := r.registerMessages(pkg, msgs); err != nil {
		return err
	}
	r.resolveFieldTypes()

	if r.repo == nil {
		r.repo = &schema.ProtoRepo{ProtoFiles: make(map[string]*schema.ProtoFile)}
	}
	r.repo.ProtoFiles[fd.GetName()] = &schema.ProtoFile{
		Name:     fd.GetName(),
		Package:  pkg,
		Syntax:   "proto3",
		Messages: msgs,
	}
	return nil
}

// convertDescriptorMessage walks one DescriptorProto into a schema.Message,
// rejecting groups, oneof members, map fields, and extensions the same way
// convert.go's convertMessage rejects their .proto-text AST counterparts
// (*parser.GroupField/*parser.Oneof/*parser.MapField/*parser.Extend): the
// generator has no way to emit any of them (spec.md §4.6 "Unsupported
// constructs").
func convertDescriptorMessage(dm *descriptorpb.DescriptorProto) (*schema.Message, error) {
	if len(dm.Extension) > 0 {
		return nil, fmt.Errorf("message %s: extensions are not supported", dm.GetName())
	}
	mapEntryNames := make(map[string]bool)
	for _, nested := range dm.NestedType {
		if nested.GetOptions().GetMapEntry() {
			mapEntryNames[nested.GetName()] = true
		}
	}

	msg := &schema.Message{Name: dm.GetName()}
	for _, df := range dm.Field {
		f, err := convertDescriptorField(df)
		if err != nil {
			return nil, fmt.Errorf("message %s: %w", dm.GetName(), err)
		}
		if f.Type.Kind == schema.KindMessage && mapEntryNames[lastSegment(f.Type.MessageType)] {
			return nil, fmt.Errorf("message %s: map fields are not supported", dm.GetName())
		}
		msg.Fields = append(msg.Fields, f)
	}
	for _, nested := range dm.NestedType {
		if nested.GetOptions().GetMapEntry() {
			continue
		}
		nestedMsg, err := convertDescriptorMessage(nested)
		if err != nil {
			return nil, err
		}
		msg.NestedTypes = append(msg.NestedTypes, nestedMsg)
	}
	return msg, nil
}

func lastSegment(typeName string) string {
	if idx := strings.LastIndexByte(typeName, '.'); idx >= 0 {
		return typeName[idx+1:]
	}
	return typeName
}

func convertDescriptorField(df *descriptorpb.FieldDescriptorProto) (*schema.Field, error) {
	if df.OneofIndex != nil {
		return nil, fmt.Errorf("oneof fields are not supported")
	}

	f := &schema.Field{
		Name:     df.GetName(),
		Number:   df.GetNumber(),
		JsonName: df.GetJsonName(),
		Label:    schema.LabelSingular,
	}
	if df.GetLabel() == descriptorpb.FieldDescriptorProto_LABEL_REPEATED {
		f.Label = schema.LabelRepeated
	}

	switch df.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		return nil, fmt.Errorf("groups are not supported")
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		f.Type = schema.FieldType{Kind: schema.KindMessage, MessageType: df.GetTypeName()}
	default:
		f.Type = schema.FieldType{Kind: schema.KindPrimitive, PrimitiveType: descriptorPrimitiveTypes[df.GetType()]}
	}

	f.Packed = f.Label == schema.LabelRepeated &&
		f.Type.Kind == schema.KindPrimitive &&
		schema.IsPackedType(f.Type.PrimitiveType)
	if opts := df.GetOptions(); opts != nil && opts.Packed != nil {
		f.Packed = opts.GetPacked()
	}
	return f, nil
}
