// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/bureau-foundation/stampede/lib/distbuild"
	"github.com/bureau-foundation/stampede/lib/frontend"
)

// theme is the palette for human-readable output. ANSI 256-color codes;
// lipgloss drops them when stdout is not a color terminal.
var theme = struct {
	Label          lipgloss.Color
	Faint          lipgloss.Color
	StatusPending  lipgloss.Color
	StatusBuilding lipgloss.Color
	StatusSuccess  lipgloss.Color
	StatusFailed   lipgloss.Color
}{
	Label:          lipgloss.Color("252"),
	Faint:          lipgloss.Color("243"),
	StatusPending:  lipgloss.Color("75"),
	StatusBuilding: lipgloss.Color("214"),
	StatusSuccess:  lipgloss.Color("114"),
	StatusFailed:   lipgloss.Color("203"),
}

func statusColor(status frontend.BuildStatus) lipgloss.Color {
	switch status {
	case frontend.StatusCreated, frontend.StatusQueued:
		return theme.StatusPending
	case frontend.StatusBuilding:
		return theme.StatusBuilding
	case frontend.StatusFinishedSuccessfully:
		return theme.StatusSuccess
	case frontend.StatusFailed:
		return theme.StatusFailed
	default:
		return theme.Faint
	}
}

// renderBuildJob formats a build record as aligned label/value lines.
func renderBuildJob(job frontend.BuildJob) string {
	labelStyle := lipgloss.NewStyle().Foreground(theme.Label).Bold(true).Width(10)
	faintStyle := lipgloss.NewStyle().Foreground(theme.Faint)
	statusStyle := lipgloss.NewStyle().Foreground(statusColor(job.Status)).Bold(true)

	var builder strings.Builder
	line := func(label, value string) {
		builder.WriteString(labelStyle.Render(label))
		builder.WriteString(value)
		builder.WriteByte('\n')
	}

	line("build", job.StampedeID.ID)
	line("status", statusStyle.Render(job.Status.String()))

	if job.BuckVersion != nil {
		line("version", renderBuckVersion(*job.BuckVersion))
	}
	if len(job.DotFiles) > 0 {
		line("dotfiles", fmt.Sprintf("%d", len(job.DotFiles)))
		for _, dotFile := range job.DotFiles {
			builder.WriteString(labelStyle.Render(""))
			builder.WriteString(dotFile.Path)
			builder.WriteString("  ")
			builder.WriteString(faintStyle.Render(shortHash(dotFile.ContentHash)))
			builder.WriteByte('\n')
		}
	}
	return builder.String()
}

func renderBuckVersion(version frontend.BuckVersion) string {
	switch version.Type {
	case frontend.VersionGit:
		return "git " + shortHash(version.GitHash)
	case frontend.VersionDevelopment:
		if version.DevelopmentToolchain != nil {
			return "development " + shortHash(version.DevelopmentToolchain.ContentHash)
		}
		return "development"
	default:
		return version.Type.String()
	}
}

// renderUploadSummary describes one dedup upload in a single line.
func renderUploadSummary(what string, summary distbuild.UploadSummary) string {
	return fmt.Sprintf("%s: %d distinct, %d already stored, %d uploaded (%s)",
		what, summary.Total, summary.Present, summary.Uploaded, humanize.IBytes(uint64(summary.UploadedBytes)))
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
