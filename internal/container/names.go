package container

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/skuahq/skua/internal/resource"
)

// ContainerName is the docker container name for a project.
func ContainerName(project string) string { return "skua-" + project }

// SanitizeMountName turns name into a safe single path component.
func SanitizeMountName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	cleaned := strings.Trim(b.String(), ".-")
	if cleaned == "" {
		return "project"
	}
	return cleaned
}

// RepoNameFromURL extracts the repository name from https, ssh and
// scp-like git URLs.
func RepoNameFromURL(repo string) string {
	repo = strings.TrimSpace(repo)
	if repo == "" {
		return ""
	}
	p := repo
	if strings.Contains(repo, "://") {
		u, err := url.Parse(repo)
		if err != nil {
			return ""
		}
		p = u.Path
	} else if at, colon := strings.Index(repo, "@"), strings.Index(repo, ":"); at >= 0 && colon > at {
		// git@github.com:owner/repo.git
		p = repo[colon+1:]
	}
	name := path.Base(strings.TrimRight(p, "/"))
	if name == "." || name == "/" {
		return ""
	}
	name = strings.TrimSuffix(name, ".git")
	if name == "" {
		return ""
	}
	return SanitizeMountName(name)
}

// ProjectMountPath is where the project's code appears inside the container.
func ProjectMountPath(p *resource.Project) string {
	name := ""
	if p.Repo != "" {
		name = RepoNameFromURL(p.Repo)
	}
	if name == "" && p.Directory != "" {
		name = SanitizeMountName(path.Base(strings.TrimRight(p.Directory, "/")))
	}
	if name == "" && p.Name != "" {
		name = SanitizeMountName(p.Name)
	}
	if name == "" {
		name = "project"
	}
	return "/home/dev/" + name
}

// splitImageRef splits "repo:tag" into ("repo", ":tag"). A colon before the
// last slash belongs to a registry port, not a tag.
func splitImageRef(ref string) (string, string) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "skua-base", ""
	}
	slash := strings.LastIndex(ref, "/")
	colon := strings.LastIndex(ref, ":")
	if colon > slash {
		return ref[:colon], ref[colon:]
	}
	return ref, ""
}

// ImageForAgent appends the agent name to the base image repository,
// keeping any tag.
func ImageForAgent(base, agent string) string {
	if strings.TrimSpace(base) == "" {
		base = "skua-base"
	}
	agent = strings.TrimSpace(agent)
	if agent == "" {
		agent = "claude"
	}
	repo, tag := splitImageRef(base)
	suffix := "-" + agent
	if strings.HasSuffix(repo, suffix) {
		return repo + tag
	}
	return repo + suffix + tag
}

// ImageForProject is the image a project runs. Projects with their own
// image customizations get a per-project, versioned image.
func ImageForProject(base string, p *resource.Project) string {
	agentImage := ImageForAgent(base, p.Agent)
	if !p.HasImageCustomizations() {
		return agentImage
	}
	repo, tag := splitImageRef(agentImage)
	version := max(p.Image.Version, 1)
	return fmt.Sprintf("%s-%s-v%d%s", repo, SanitizeMountName(p.Name), version, tag)
}
