package recipe

import (
	"fmt"
	"path"
	"strings"
)

// Render is the single place string splicing happens, per spec.md §9's
// design note keeping the Recipe/Stanza model "purely structural."
func (r *Recipe) Render() string {
	var b strings.Builder

	if r.SyntaxDirective != "" {
		fmt.Fprintln(&b, r.SyntaxDirective)
	}
	fmt.Fprintf(&b, "ARG _DEV_CONTAINERS_BASE_IMAGE=%s\n", r.BaseImage)
	fmt.Fprintln(&b)

	// StanzaBase and every StanzaStage are independent intermediate build
	// stages, rendered first and in order. StanzaCopy, StanzaInstall, and
	// StanzaEnv all belong to the single final stage: copyFeatureBuildStages
	// copies acquired payloads in, featureLayer installs the rest, and the
	// containerEnv lines close it out — so the final "FROM" is emitted once,
	// the first time one of those three kinds is encountered.
	finalStageOpened := false
	openFinalStage := func() {
		if !finalStageOpened {
			fmt.Fprintln(&b, "FROM $_DEV_CONTAINERS_BASE_IMAGE")
			finalStageOpened = true
		}
	}

	for _, st := range r.Stanzas {
		switch st.Kind {
		case StanzaBase:
			fmt.Fprintf(&b, "FROM %s AS dev_containers_feature_content_source\n\n", st.ContentImage)

		case StanzaStage:
			fmt.Fprintf(&b, "FROM $_DEV_CONTAINERS_BASE_IMAGE AS %s\n", st.StageName)
			fmt.Fprintf(&b, "COPY --from=dev_containers_feature_content_source %s %s\n", st.FeaturePath, st.FeaturePath)
			fmt.Fprintf(&b, "COPY --from=dev_containers_feature_content_source %s %s\n", st.CommonPath, st.CommonPath)
			fmt.Fprintf(&b, "RUN . %s && %s/bin/acquire\n\n", st.EnvFilePath, st.FeaturePath)

		case StanzaCopy:
			openFinalStage()
			fmt.Fprintf(&b, "COPY --from=%s %s %s\n", st.CopyFromStage, st.CopyPath, st.CopyPath)
			if st.HasConfigure {
				fmt.Fprintf(&b, "RUN . %s && %s/bin/configure\n", st.ConfigureEnvPath, st.CopyPath)
			}

		case StanzaInstall:
			openFinalStage()
			for _, entry := range st.InstallEntries {
				fmt.Fprintf(&b, "COPY --from=dev_containers_feature_content_source %s %s\n", entry.SourcePath, entry.TargetPath)
				fmt.Fprintf(&b, "COPY --from=dev_containers_feature_content_source %s %s\n", entry.CommonPath, path.Join(path.Dir(entry.TargetPath), "common"))
				fmt.Fprintf(&b, "RUN . %s && %s/install.sh\n", entry.EnvFilePath, entry.TargetPath)
			}

		case StanzaEnv:
			openFinalStage()
			for _, line := range st.EnvLines {
				fmt.Fprintf(&b, "ENV %s=%s\n", line.Key, line.Value)
			}
		}
	}
	openFinalStage()

	return b.String()
}

// ContentDockerfile renders the legacy-backend throwaway content image's
// build file, per spec.md §4.5 ("Backend selection"): "FROM scratch;
// COPY . /tmp/build-features/".
func ContentDockerfile() string {
	return "FROM scratch\nCOPY . /tmp/build-features/\n"
}
