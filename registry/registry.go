// Package registry resolves .proto schemas into the schema.Message trees
// the generator walks. Two front-ends converge on the same tree: text
// parsed directly from .proto files (this file, backing cmd/minipbc) and
// FileDescriptorProto sets decoded from a protoc plugin request
// (descriptor.go, backing cmd/protoc-gen-minipb).
package registry

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/minipb/minipb/schema"
	parser "github.com/yoheimuta/go-protoparser/v4/parser"
)

// Registry holds every message parsed from a proto source tree, keyed by
// fully qualified name, along with enough of the import graph to resolve
// cross-file type references.
type Registry struct {
	ProtoDirectories []string

	parsedProtoBody map[string]*parser.Proto
	protoEntities   map[string]*protoFileEntity

	repo     *schema.ProtoRepo
	messages map[string]*schema.Message // fully qualified name -> message
}

// NewRegistry creates a Registry that resolves imports against
// protoDirectories, in order, the same -I semantics protoc uses.
func NewRegistry(protoDirectories []string) *Registry {
	return &Registry{
		ProtoDirectories: protoDirectories,
		parsedProtoBody:  make(map[string]*parser.Proto),
		protoEntities:    make(map[string]*protoFileEntity),
		messages:         make(map[string]*schema.Message),
	}
}

// LoadSchema parses entryProtoFile and every file it imports (resolved
// against ProtoDirectories), converts each into a schema.ProtoFile, and
// builds the fully qualified message symbol table used by GetMessage.
func (r *Registry) LoadSchema(entryProtoFile string) error {
	files, err := r.getAllProtoInfo(entryProtoFile)
	if err != nil {
		return fmt.Errorf("failed to resolve proto imports: %w", err)
	}

	if r.repo == nil {
		r.repo = &schema.ProtoRepo{ProtoFiles: make(map[string]*schema.ProtoFile)}
	}
	var loaded []*schema.ProtoFile
	for _, f := range files {
		if _, done := r.repo.ProtoFiles[f]; done {
			continue
		}
		body, ok := r.parsedProtoBody[f]
		if !ok {
			return fmt.Errorf("internal error: %s was not parsed", f)
		}
		protoFile, err := convertProtoFile(filepath.Base(f), body)
		if err != nil {
			return err
		}
		r.repo.ProtoFiles[f] = protoFile
		loaded = append(loaded, protoFile)
	}

	for _, protoFile := range loaded {
		if err := r.registerMessages(protoFile.Package, protoFile.Messages); err != nil {
			return err
		}
	}
	r.resolveFieldTypes()
	return nil
}

func (r *Registry) registerMessages(pkg string, msgs []*schema.Message) error {
	for _, m := range msgs {
		fullName := r.getFullName(pkg, m.Name)
		if _, exists := r.messages[fullName]; exists {
			return fmt.Errorf("duplicate message name: %s", fullName)
		}
		r.messages[fullName] = m
		if err := r.registerNested(pkg, m.Name, m.NestedTypes); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) registerNested(pkg, parentName string, nested []*schema.Message) error {
	for _, m := range nested {
		fullName := r.getFullName(pkg, parentName+"."+m.Name)
		r.messages[fullName] = m
		if err := r.registerNested(pkg, parentName+"."+m.Name, m.NestedTypes); err != nil {
			return err
		}
	}
	return nil
}

// resolveFieldTypes settles every field whose Type.Kind was provisionally
// set to KindMessage by convertField against the symbol table, and folds
// references to enum names down to PrimitiveType Int32 (schema.md §2).
// Resolution reuses getReferencedType's scope-walking rules so a field
// referencing a sibling or outer-scope message resolves the same way
// protoc resolves type names relative to the declaring message.
func (r *Registry) resolveFieldTypes() {
	known := make(map[string]struct{}, len(r.messages))
	for full := range r.messages {
		known[full] = struct{}{}
	}
	for scope, msg := range r.messages {
		for _, f := range msg.Fields {
			if f.Type.Kind != schema.KindMessage {
				continue
			}
			resolved, err := getReferencedType(f.Type.MessageType, scope, known)
			if err != nil {
				// Not a known message: the only other thing a bare
				// identifier can name in proto3 is an enum, which has no
				// generated type of its own (Non-goal); fold to int32.
				f.Type = schema.FieldType{
					Kind:          schema.KindPrimitive,
					PrimitiveType: schema.TypeInt32,
					EnumTypeName:  strings.TrimPrefix(f.Type.MessageType, "."),
				}
				continue
			}
			f.Type.MessageType = resolved
		}
	}
}

func (r *Registry) getFullName(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

// GetMessage retrieves a message definition by fully or partially qualified
// name.
func (r *Registry) GetMessage(name string) (*schema.Message, error) {
	if msg, ok := r.messages[name]; ok {
		return msg, nil
	}
	for full, msg := range r.messages {
		if strings.HasSuffix(full, "."+name) || full == name {
			return msg, nil
		}
	}
	return nil, fmt.Errorf("message not found: %s", name)
}

// ListMessages returns every registered fully qualified message name.
func (r *Registry) ListMessages() []string {
	names := make([]string, 0, len(r.messages))
	for name := range r.messages {
		names = append(names, name)
	}
	return names
}

// Files returns the parsed proto file set, in load order is not
// guaranteed since files are keyed by path.
func (r *Registry) Files() *schema.ProtoRepo {
	return r.repo
}
