package schema

// ProtoRepo represents a collection of .proto files and their definitions.
type ProtoRepo struct {
	ProtoFiles map[string]*ProtoFile `json:"proto_files"`
}

// ProtoFile represents a single .proto file
type ProtoFile struct {
	Name     string     `json:"name"`     // file.proto
	Package  string     `json:"package"`  // package name
	Syntax   string     `json:"syntax"`   // proto2 or proto3
	Imports  []*Import  `json:"imports"`  // imported files
	Messages []*Message `json:"messages"` // message definitions
}

// Import represents an import statement
type Import struct {
	Path   string `json:"path"`   // "google/protobuf/timestamp.proto"
	Public bool   `json:"public"` // public import
	Weak   bool   `json:"weak"`   // weak import
}

// Message represents a protobuf message definition. oneof groups and map
// entries are out of scope: a generator input describing one of these is
// rejected before it reaches this tree. Wrapper well-known types are
// neither recognised nor rejected; they get no special handling.
type Message struct {
	Name        string     `json:"name"`         // "User"
	Fields      []*Field   `json:"fields"`       // message fields
	NestedTypes []*Message `json:"nested_types"` // nested messages
}

// Field represents a message field
type Field struct {
	Name     string     `json:"name"`      // "user_name"
	Number   int32      `json:"number"`    // 1
	Label    FieldLabel `json:"label"`     // singular or repeated
	Type     FieldType  `json:"type"`      // field type information
	JsonName string     `json:"json_name"` // JSON field name; recorded by the registry, not read by the generator
	Packed   bool       `json:"packed"`    // emit as a packed repeated field
}

// FieldLabel represents field labels. proto2 "required" is not modeled:
// proto3 has no required fields and this codec targets proto3 only.
type FieldLabel string

const (
	LabelSingular FieldLabel = "singular"
	LabelRepeated FieldLabel = "repeated"
)

// FieldType represents field type information. Kind is restricted to
// Primitive and Message: enum fields lower to PrimitiveType Int32 with
// EnumTypeName carried for generated comments only, since enums are not a
// distinct generated Go type here.
type FieldType struct {
	Kind          TypeKind      `json:"kind"`
	PrimitiveType PrimitiveType `json:"primitive_type,omitempty"`
	MessageType   string        `json:"message_type,omitempty"` // "User", for Kind==Message
	EnumTypeName  string        `json:"enum_type_name,omitempty"`
}

// TypeKind represents the kind of field type
type TypeKind string

const (
	KindPrimitive TypeKind = "primitive"
	KindMessage   TypeKind = "message"
)

// PrimitiveType represents protobuf primitive types
type PrimitiveType string

const (
	TypeDouble   PrimitiveType = "double"
	TypeFloat    PrimitiveType = "float"
	TypeInt64    PrimitiveType = "int64"
	TypeUint64   PrimitiveType = "uint64"
	TypeInt32    PrimitiveType = "int32"
	TypeFixed64  PrimitiveType = "fixed64"
	TypeFixed32  PrimitiveType = "fixed32"
	TypeBool     PrimitiveType = "bool"
	TypeString   PrimitiveType = "string"
	TypeBytes    PrimitiveType = "bytes"
	TypeUint32   PrimitiveType = "uint32"
	TypeSfixed32 PrimitiveType = "sfixed32"
	TypeSfixed64 PrimitiveType = "sfixed64"
	TypeSint32   PrimitiveType = "sint32"
	TypeSint64   PrimitiveType = "sint64"
)

var packedEligible = map[PrimitiveType]struct{}{
	TypeDouble:   {},
	TypeFloat:    {},
	TypeInt64:    {},
	TypeUint64:   {},
	TypeInt32:    {},
	TypeFixed64:  {},
	TypeFixed32:  {},
	TypeBool:     {},
	TypeUint32:   {},
	TypeSfixed32: {},
	TypeSfixed64: {},
	TypeSint32:   {},
	TypeSint64:   {},
}

// IsPackedType checks and returns if the Primitive type is packed-eligible
// for a repeated field. string and bytes are never packed.
func IsPackedType(t PrimitiveType) bool {
	_, ok := packedEligible[t]
	return ok
}
