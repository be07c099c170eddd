package registry

import (
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

func fileDescriptor(name, pkg string, messages ...*descriptorpb.DescriptorProto) *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:        proto.String(name),
		Package:     proto.String(pkg),
		Syntax:      proto.String("proto3"),
		MessageType: messages,
	}
}

func TestLoadFileDescriptor_SingleMessage(t *testing.T) {
	fd := fileDescriptor("simple.proto", "example", &descriptorpb.DescriptorProto{
		Name: proto.String("Person"),
		Field: []*descriptorpb.FieldDescriptorProto{
			{
				Name:   proto.String("name"),
				Number: proto.Int32(1),
				Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
				Type:   descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
			},
		},
	})

	r := NewRegistry(nil)
	if err := r.LoadFileDescriptor(fd); err != nil {
		t.Fatalf("LoadFileDescriptor: %v", err)
	}
	if _, err := r.GetMessage("example.Person"); err != nil {
		t.Fatalf("GetMessage: %v", err)
	}
}

func TestLoadFileDescriptor_RejectsGroup(t *testing.T) {
	fd := fileDescriptor("group.proto", "example", &descriptorpb.DescriptorProto{
		Name: proto.String("Msg"),
		Field: []*descriptorpb.FieldDescriptorProto{
			{
				Name:     proto.String("legacy"),
				Number:   proto.Int32(1),
				Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
				Type:     descriptorpb.FieldDescriptorProto_TYPE_GROUP.Enum(),
				TypeName: proto.String(".example.Msg.Legacy"),
			},
		},
	})

	r := NewRegistry(nil)
	if err := r.LoadFileDescriptor(fd); err == nil {
		t.Fatal("expected LoadFileDescriptor to reject a group field")
	}
}

func TestLoadFileDescriptor_RejectsOneof(t *testing.T) {
	fd := fileDescriptor("oneof.proto", "example", &descriptorpb.DescriptorProto{
		Name: proto.String("Shape"),
		Field: []*descriptorpb.FieldDescriptorProto{
			{
				Name:       proto.String("circle_radius"),
				Number:     proto.Int32(1),
				Label:      descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
				Type:       descriptorpb.FieldDescriptorProto_TYPE_INT32.Enum(),
				OneofIndex: proto.Int32(0),
			},
		},
		OneofDecl: []*descriptorpb.OneofDescriptorProto{
			{Name: proto.String("kind")},
		},
	})

	r := NewRegistry(nil)
	if err := r.LoadFileDescriptor(fd); err == nil {
		t.Fatal("expected LoadFileDescriptor to reject a oneof member field")
	}
}

func TestLoadFileDescriptor_RejectsMapField(t *testing.T) {
	fd := fileDescriptor("map.proto", "example", &descriptorpb.DescriptorProto{
		Name: proto.String("Job"),
		Field: []*descriptorpb.FieldDescriptorProto{
			{
				Name:     proto.String("tags"),
				Number:   proto.Int32(1),
				Label:    descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum(),
				Type:     descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum(),
				TypeName: proto.String(".example.Job.TagsEntry"),
			},
		},
		NestedType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("TagsEntry"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{
						Name:   proto.String("key"),
						Number: proto.Int32(1),
						Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
						Type:   descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
					},
					{
						Name:   proto.String("value"),
						Number: proto.Int32(2),
						Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
						Type:   descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
					},
				},
				Options: &descriptorpb.MessageOptions{MapEntry: proto.Bool(true)},
			},
		},
	})

	r := NewRegistry(nil)
	if err := r.LoadFileDescriptor(fd); err == nil {
		t.Fatal("expected LoadFileDescriptor to reject a map field")
	}
}
