package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/minipb/minipb/schema"
)

func writeProtoFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadSchema_SingleMessage(t *testing.T) {
	dir := t.TempDir()
	writeProtoFile(t, dir, "simple.proto", `
syntax = "proto3";
package example;

message Person {
  string name = 1;
  int32 age = 2;
  repeated int32 scores = 3;
}
`)

	r := NewRegistry([]string{dir})
	if err := r.LoadSchema("simple.proto"); err != nil {
		t.Fatalf("LoadSchema: %v", err)
	}

	msg, err := r.GetMessage("example.Person")
	if err != nil {
		t.Fatalf("GetMessage: %v", err)
	}
	if len(msg.Fields) != 3 {
		t.Fatalf("got %d fields, want 3", len(msg.Fields))
	}
	scores := msg.Fields[2]
	if scores.Label != schema.LabelRepeated || !scores.Packed {
		t.Errorf("scores field = %+v, want repeated+packed", scores)
	}
}

func TestLoadSchema_NestedMessageReference(t *testing.T) {
	dir := t.TempDir()
	writeProtoFile(t, dir, "nested.proto", `
syntax = "proto3";
package example;

message Outer {
  Inner inner = 1;
  message Inner {
    int32 value = 1;
  }
}
`)

	r := NewRegistry([]string{dir})
	if err := r.LoadSchema("nested.proto"); err != nil {
		t.Fatalf("LoadSchema: %v", err)
	}

	outer, err := r.GetMessage("example.Outer")
	if err != nil {
		t.Fatalf("GetMessage: %v", err)
	}
	f := outer.Fields[0]
	if f.Type.Kind != schema.KindMessage {
		t.Fatalf("field kind = %v, want Message", f.Type.Kind)
	}
	if f.Type.MessageType != "example.Outer.Inner" {
		t.Errorf("resolved type = %q, want example.Outer.Inner", f.Type.MessageType)
	}
}

func TestLoadSchema_Import(t *testing.T) {
	dir := t.TempDir()
	writeProtoFile(t, dir, "common.proto", `
syntax = "proto3";
package common;

message Address {
  string city = 1;
}
`)
	writeProtoFile(t, dir, "user.proto", `
syntax = "proto3";
package example;

import "common.proto";

message User {
  common.Address address = 1;
}
`)

	r := NewRegistry([]string{dir})
	if err := r.LoadSchema("user.proto"); err != nil {
		t.Fatalf("LoadSchema: %v", err)
	}
	user, err := r.GetMessage("example.User")
	if err != nil {
		t.Fatalf("GetMessage(User): %v", err)
	}
	if user.Fields[0].Type.MessageType != "common.Address" {
		t.Errorf("address field type = %q, want common.Address", user.Fields[0].Type.MessageType)
	}
	if _, err := r.GetMessage("common.Address"); err != nil {
		t.Errorf("GetMessage(Address): %v", err)
	}
}

func TestLoadSchema_EnumFieldFoldsToInt32(t *testing.T) {
	dir := t.TempDir()
	writeProtoFile(t, dir, "status.proto", `
syntax = "proto3";
package example;

enum Status {
  UNKNOWN = 0;
  ACTIVE = 1;
}

message Job {
  Status status = 1;
}
`)

	r := NewRegistry([]string{dir})
	if err := r.LoadSchema("status.proto"); err != nil {
		t.Fatalf("LoadSchema: %v", err)
	}
	job, err := r.GetMessage("example.Job")
	if err != nil {
		t.Fatalf("GetMessage: %v", err)
	}
	status := job.Fields[0]
	if status.Type.Kind != schema.KindPrimitive || status.Type.PrimitiveType != schema.TypeInt32 {
		t.Errorf("status field = %+v, want primitive int32", status)
	}
}

func TestLoadSchema_RejectsOneof(t *testing.T) {
	dir := t.TempDir()
	writeProtoFile(t, dir, "oneof.proto", `
syntax = "proto3";
package example;

message Shape {
  oneof kind {
    int32 circle_radius = 1;
    int32 square_side = 2;
  }
}
`)

	r := NewRegistry([]string{dir})
	if err := r.LoadSchema("oneof.proto"); err == nil {
		t.Fatal("expected LoadSchema to reject a oneof field")
	}
}

func TestLoadSchema_NonExistentPath(t *testing.T) {
	r := NewRegistry([]string{t.TempDir()})
	if err := r.LoadSchema("missing.proto"); err == nil {
		t.Fatal("expected an error for a missing entry file")
	}
}
