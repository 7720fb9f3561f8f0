// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/packlane/packlane/archive"
	"github.com/packlane/packlane/gar"
	"github.com/packlane/packlane/gcloud"
	"github.com/packlane/packlane/logger"
)

// uploadVersionFormat is the version stamp for generic uploads. It is
// deliberately distinct from the archive filename stamp.
const uploadVersionFormat = "20060102.150405"

// defaultArtifactOutputDir is where built archives are kept. Unlike
// temporary directories, the archive itself is retained after the push.
const defaultArtifactOutputDir = "artifacts"

// ArtifactPusher compresses a source directory into a timestamped tar.gz
// and uploads it to a generic Artifact Registry repository.
type ArtifactPusher struct {
	tb *Toolbox
}

// NewArtifactPusher returns the artifact_push workflow.
func NewArtifactPusher(tb *Toolbox) *ArtifactPusher {
	return &ArtifactPusher{tb: tb}
}

// Definition implements Invoker.
func (*ArtifactPusher) Definition() mcp.Tool {
	return mcp.NewTool("artifact_push",
		mcp.WithDescription("Compress a directory into a timestamped tar.gz and push it to Google Artifact Registry as a generic artifact."),
		mcp.WithString("source_dir", mcp.Description("Directory containing the files to compress.")),
		mcp.WithString("repository_path", mcp.Description("Artifact Registry repository path, e.g. us-central1-docker.pkg.dev/project-id/repo-name.")),
		mcp.WithString("artifact_name", mcp.Description("Name for the artifact; the filename gets a timestamp appended.")),
		mcp.WithString("output_dir", mcp.Description("Directory to store the compressed artifact (default: artifacts).")),
		mcp.WithNumber("timeout", mcp.Description("Per-command timeout in seconds (default: 300).")),
	)
}

// Invoke implements Invoker.
func (p *ArtifactPusher) Invoke(ctx context.Context, args map[string]any) Result {
	if err := validateArgs(args, "data/artifact_push.schema.json"); err != nil {
		return errResult("%s", err.Error())
	}

	sourceDir := stringArg(args, "source_dir", "")
	if sourceDir == "" {
		return errResult("Source directory is required")
	}
	repositoryPath := stringArg(args, "repository_path", "")
	if repositoryPath == "" {
		return errResult("GCP Artifact Registry repository path is required")
	}
	artifactName := stringArg(args, "artifact_name", "")
	if artifactName == "" {
		return errResult("Artifact name is required")
	}
	outputDir := stringArg(args, "output_dir", defaultArtifactOutputDir)
	timeout := p.tb.timeout(args)

	repo, err := gar.ParsePath(repositoryPath)
	if err != nil {
		return errResult("%s", err.Error())
	}

	if _, err := p.tb.GCloud.Provision(ctx, p.tb.Config.DockerHost, timeout); err != nil {
		return execFailure(err, timeout)
	}

	logger.Infow("creating compressed artifact", "source_dir", sourceDir, "artifact_name", artifactName)
	built, err := archive.Build(sourceDir, outputDir, artifactName, p.tb.Now())
	if err != nil {
		return errResult("Failed to create compressed artifact: %s", err.Error())
	}

	version := p.tb.Now().Format(uploadVersionFormat)
	logger.Infow("pushing artifact", "repository", repo.String(), "package", artifactName, "version", version)
	res, err := p.tb.GCloud.UploadGeneric(ctx, gcloud.UploadParams{
		Location:   p.tb.Config.Location,
		Repository: repo.Repository,
		Project:    repo.Project,
		Package:    artifactName,
		Version:    version,
		Source:     built.Path,
		Timeout:    timeout,
	})
	if err != nil {
		return execFailure(err, timeout)
	}

	return Result{
		"success":        true,
		"artifact_name":  built.Filename,
		"artifact_path":  built.Path,
		"repository":     repo.String(),
		"repository_url": repo.URL(),
		"timestamp":      built.Timestamp,
		"digest":         built.Digest.String(),
		"package":        artifactName,
		"version":        version,
		"output":         res.Stdout,
	}
}
