// Package builder implements the Build Driver (spec.md §4.6): argv-level
// invocation of the host's docker binary, selecting between the
// advanced (build-context) and legacy (throwaway content image)
// backends per the recipe the Build Recipe Synthesizer produced.
//
// Grounded on the teacher's internal/build.CLIBuilder (BuildFromDockerfile
// in internal/build/dockerfile.go): "docker buildx build" argv assembly,
// --build-arg/-t/-f flag attachment, and PTY-vs-plain output streaming
// all follow that shape, adapted to go through the host.Host
// abstraction instead of exec.CommandContext directly.
package builder

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"golang.org/x/term"

	"github.com/corewright/vessel/internal/host"
	"github.com/corewright/vessel/internal/recipe"
	"github.com/corewright/vessel/internal/util"
)

// Options configures one Build invocation.
type Options struct {
	// Dockerfile is the path to the synthesized recipe file.
	Dockerfile string
	// Context is the build context directory. For legacy mode this MUST
	// be a guaranteed-empty directory (spec.md §4.6 op.2): the feature
	// tree reaches the builder via the content image, not this context.
	Context string
	// Tag is the resulting image tag.
	Tag string
	// BuildArgs are attached as --build-arg K=V pairs.
	BuildArgs map[string]string
	// BuildContexts are attached as --build-context name=dir pairs,
	// advanced mode only.
	BuildContexts map[string]string
	// Stdout receives build output; in a PTY it receives the combined
	// stdout/stderr stream.
	Stdout io.Writer
	// IsTTY overrides TTY autodetection; nil means autodetect stdin.
	IsTTY *bool
}

// Build drives one container build per spec.md §4.6. In legacy mode
// callers must build the throwaway content image first via
// BuildContentImage. Both backends invoke "docker buildx build --load";
// the backends differ only in the build context and in whether
// --build-context pairs are attached. The classic "docker build"
// command is used only by BuildContentImage.
func Build(ctx context.Context, h host.Host, opts Options) error {
	args := []string{"buildx", "build", "--load"}

	if opts.Tag != "" {
		args = append(args, "-t", opts.Tag)
	}
	if opts.Dockerfile != "" {
		args = append(args, "-f", opts.Dockerfile)
	}
	for name, dir := range opts.BuildContexts {
		args = append(args, "--build-context", fmt.Sprintf("%s=%s", name, dir))
	}
	for k, v := range opts.BuildArgs {
		args = append(args, "--build-arg", fmt.Sprintf("%s=%s", k, v))
	}

	context := opts.Context
	if context == "" {
		context = "."
	}
	args = append(args, context)

	return run(ctx, h, args, opts.Stdout, opts.IsTTY)
}

// BuildContentImage builds the legacy-backend throwaway content image
// (spec.md §4.6 op.2): "FROM scratch; COPY . /tmp/build-features/"
// against dstFolder, tagged imageName.
func BuildContentImage(ctx context.Context, h host.Host, dstFolder, dockerfilePath, imageName string, stdout io.Writer) error {
	args := []string{"build", "-t", imageName, "-f", dockerfilePath, dstFolder}
	return run(ctx, h, args, stdout, nil)
}

func run(ctx context.Context, h host.Host, args []string, stdout io.Writer, isTTY *bool) error {
	tty := isTTY != nil && *isTTY
	if isTTY == nil {
		tty = term.IsTerminal(int(stdinFd()))
	}

	var stderrBuf bytes.Buffer

	if tty {
		out := stdout
		if out == nil {
			out = io.Discard
		}
		// A PTY combines stdout and stderr into one stream, so the same
		// writer that streams output to the caller also feeds the capture
		// buffer BuildError reports on failure (spec.md §4.6/§7: BuildError
		// carries the builder's captured output for postmortem).
		tee := io.MultiWriter(out, &stderrBuf)
		result, err := h.ExecPTY(ctx, "docker", args, "", tee)
		if err != nil || result.ExitCode != 0 {
			return util.NewBuildError(stderrBuf.String(), fmt.Errorf("docker %v: exit %d: %w", args, result.ExitCode, errOrExit(err, result.ExitCode)))
		}
		return nil
	}

	out := stdout
	if out == nil {
		out = io.Discard
	}
	result, err := h.Exec(ctx, "docker", args, "", out, &stderrBuf)
	if err != nil || result.ExitCode != 0 {
		return util.NewBuildError(stderrBuf.String(), fmt.Errorf("docker %v: exit %d: %w", args, result.ExitCode, errOrExit(err, result.ExitCode)))
	}
	return nil
}

func errOrExit(err error, code int) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("non-zero exit code %d", code)
}

// FromRecipe derives build Options from a synthesized Recipe. In
// advanced mode dstFolder is attached as the
// dev_containers_feature_content_source build context, and also serves
// as the plain build context argument. In legacy mode content already
// reached the builder via the pre-built content image, so emptyDir (a
// directory the caller guarantees is empty) is used as the build
// context instead, per spec.md §4.6 op.2 ("to avoid transmitting the
// feature tree through the normal context channel").
func FromRecipe(r *recipe.Recipe, dockerfilePath, dstFolder, emptyDir, tag string, buildArgs map[string]string) Options {
	opts := Options{
		Dockerfile: dockerfilePath,
		Tag:        tag,
		BuildArgs:  buildArgs,
	}
	if r.NeedsContentImage {
		opts.Context = emptyDir
	} else {
		opts.Context = dstFolder
		opts.BuildContexts = map[string]string{
			"dev_containers_feature_content_source": dstFolder,
		}
	}
	return opts
}
