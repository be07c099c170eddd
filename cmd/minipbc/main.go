// Command minipbc compiles .proto files directly into Go source, without a
// protoc host in front of it: minipbc --proto_path=. --go_out=gen/ foo/bar.proto
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/minipb/minipb/gen"
	"github.com/minipb/minipb/registry"
	"github.com/minipb/minipb/schema"
)

var (
	app       = kingpin.New("minipbc", "Standalone compiler for the minipb wire codec.")
	protoPath = app.Flag("proto_path", "Directory to search for imports; repeatable.").Short('I').Strings()
	goOut     = app.Flag("go_out", "Output directory for generated .go files.").Required().String()
	protoArgs = app.Arg("proto", ".proto files to compile.").Required().Strings()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger, afero.NewOsFs()); err != nil {
		logger.Error("compile failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, fs afero.Fs) error {
	dirs := *protoPath
	if len(dirs) == 0 {
		dirs = []string{"."}
	}

	r := registry.NewRegistry(dirs)
	for _, protoFile := range *protoArgs {
		logger.Info("loading schema", zap.String("file", protoFile))
		if err := r.LoadSchema(protoFile); err != nil {
			return errors.Wrapf(err, "loading %s", protoFile)
		}
	}

	repo := r.Files()
	for path, pf := range repo.ProtoFiles {
		if err := generateFile(logger, fs, path, pf); err != nil {
			return errors.Wrapf(err, "generating %s", path)
		}
	}
	return nil
}

func generateFile(logger *zap.Logger, fs afero.Fs, path string, pf *schema.ProtoFile) error {
	goPackage := goPackageName(pf.Package)
	src, err := gen.Generate(goPackage, pf)
	if err != nil {
		return errors.Wrap(err, "code generation")
	}

	outPath := filepath.Join(*goOut, strings.TrimSuffix(path, ".proto")+".pb.mini.go")
	if err := fs.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}
	if err := afero.WriteFile(fs, outPath, src, 0o644); err != nil {
		return errors.Wrap(err, "writing generated file")
	}
	logger.Info("wrote generated file", zap.String("path", outPath))
	return nil
}

// goPackageName derives a Go package clause from a proto package name
// (a.b.c -> c), falling back to a fixed name for files declared with no
// proto package.
func goPackageName(protoPackage string) string {
	if protoPackage == "" {
		return "minipbgen"
	}
	parts := strings.Split(protoPackage, ".")
	return parts[len(parts)-1]
}
