// Command protoc-gen-minipb is a protoc plugin: it reads a
// CodeGeneratorRequest from stdin and writes a CodeGeneratorResponse to
// stdout, emitting one foo.pb.mini.go per foo.proto in the request.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"

	"github.com/minipb/minipb/gen"
	"github.com/minipb/minipb/registry"
)

func main() {
	if err := run(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return errors.Wrap(err, "reading CodeGeneratorRequest")
	}

	req := &pluginpb.CodeGeneratorRequest{}
	if err := proto.Unmarshal(data, req); err != nil {
		return errors.Wrap(err, "unmarshaling CodeGeneratorRequest")
	}

	resp := buildResponse(req)

	respData, err := proto.Marshal(resp)
	if err != nil {
		return errors.Wrap(err, "marshaling CodeGeneratorResponse")
	}
	if _, err := out.Write(respData); err != nil {
		return errors.Wrap(err, "writing CodeGeneratorResponse")
	}
	return nil
}

// buildResponse never returns an error: per spec.md §6, a failure to
// generate surfaces as resp.Error, not a plugin crash, so protoc can report
// it against the right file.
func buildResponse(req *pluginpb.CodeGeneratorRequest) *pluginpb.CodeGeneratorResponse {
	r := registry.NewRegistry(nil)

	for _, fd := range req.GetProtoFile() {
		if err := r.LoadFileDescriptor(fd); err != nil {
			return errorResponse(errors.Wrapf(err, "loading %s", fd.GetName()))
		}
	}

	toGenerate := make(map[string]bool, len(req.GetFileToGenerate()))
	for _, name := range req.GetFileToGenerate() {
		toGenerate[name] = true
	}

	repo := r.Files()
	var files []*pluginpb.CodeGeneratorResponse_File
	for _, fd := range req.GetProtoFile() {
		if !toGenerate[fd.GetName()] {
			continue
		}
		pf, ok := repo.ProtoFiles[fd.GetName()]
		if !ok {
			return errorResponse(fmt.Errorf("%s: not found after loading", fd.GetName()))
		}

		src, err := gen.Generate(goPackageName(fd), pf)
		if err != nil {
			return errorResponse(errors.Wrapf(err, "generating %s", fd.GetName()))
		}

		files = append(files, &pluginpb.CodeGeneratorResponse_File{
			Name:    proto.String(strings.TrimSuffix(fd.GetName(), ".proto") + ".pb.mini.go"),
			Content: proto.String(string(src)),
		})
	}

	supported := uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL)
	return &pluginpb.CodeGeneratorResponse{
		File:              files,
		SupportedFeatures: &supported,
	}
}

// goPackageName prefers the file's go_package option, falling back to the
// proto package's last path segment the same way minipbc does for the
// .proto text front-end.
func goPackageName(fd *descriptorpb.FileDescriptorProto) string {
	if opt := fd.GetOptions().GetGoPackage(); opt != "" {
		if idx := strings.LastIndexByte(opt, ';'); idx >= 0 {
			return opt[idx+1:]
		}
		parts := strings.Split(opt, "/")
		return parts[len(parts)-1]
	}
	if pkg := fd.GetPackage(); pkg != "" {
		parts := strings.Split(pkg, ".")
		return parts[len(parts)-1]
	}
	return "minipbgen"
}

func errorResponse(err error) *pluginpb.CodeGeneratorResponse {
	msg := err.Error()
	return &pluginpb.CodeGeneratorResponse{Error: &msg}
}
