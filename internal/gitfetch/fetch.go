// Package gitfetch pulls repository snapshots (recent commits with
// diffs plus documentation files) from GitHub over the REST API.
package gitfetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	deckerrors "github.com/deckforge/deckforge/internal/errors"
	"github.com/deckforge/deckforge/internal/repo"
)

const (
	// DefaultMaxCommits bounds how much history goes into a snapshot.
	DefaultMaxCommits = 5

	// DefaultMaxDocs bounds how many documentation files are fetched.
	DefaultMaxDocs = 20
)

// Config holds fetcher settings. Token is optional; unauthenticated
// requests work for public repositories at a much lower quota.
type Config struct {
	Token      string
	MaxCommits int
	MaxDocs    int
}

// Fetcher pulls snapshots from GitHub.
type Fetcher struct {
	gh      *gh.Client
	limiter *rateLimiter
	config  Config
}

// NewFetcher creates a GitHub-backed fetcher.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.MaxCommits <= 0 {
		cfg.MaxCommits = DefaultMaxCommits
	}
	if cfg.MaxDocs <= 0 {
		cfg.MaxDocs = DefaultMaxDocs
	}

	client := gh.NewClient(nil)
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		client = gh.NewClient(oauth2.NewClient(context.Background(), ts))
	}

	return &Fetcher{
		gh:      client,
		limiter: newRateLimiter(),
		config:  cfg,
	}
}

// ParseRepoURL extracts owner and name from a GitHub repository URL.
// Accepts https URLs with or without a .git suffix, and the
// git@github.com:owner/name.git SSH form.
func ParseRepoURL(repoURL string) (owner, name string, err error) {
	trimmed := strings.TrimSpace(repoURL)
	trimmed = strings.TrimSuffix(trimmed, "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")

	if rest, ok := strings.CutPrefix(trimmed, "git@github.com:"); ok {
		parts := strings.Split(rest, "/")
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			return parts[0], parts[1], nil
		}
		return "", "", deckerrors.New(deckerrors.ErrCodeInvalidInput,
			fmt.Sprintf("cannot parse repository URL %q", repoURL), nil)
	}

	u, parseErr := url.Parse(trimmed)
	if parseErr != nil || !strings.HasSuffix(u.Host, "github.com") {
		return "", "", deckerrors.New(deckerrors.ErrCodeInvalidInput,
			fmt.Sprintf("not a GitHub repository URL: %q", repoURL), parseErr)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", deckerrors.New(deckerrors.ErrCodeInvalidInput,
			fmt.Sprintf("repository URL %q has no owner/name", repoURL), nil)
	}
	return parts[0], parts[1], nil
}

// Fetch pulls a snapshot of the repository: up to MaxCommits recent
// commits with filtered diffs, and up to MaxDocs documentation files.
// Documentation fetch failures degrade to fewer docs; an unreachable
// repository is fatal.
func (f *Fetcher) Fetch(ctx context.Context, repoURL string) (repo.Snapshot, error) {
	owner, name, err := ParseRepoURL(repoURL)
	if err != nil {
		return repo.Snapshot{}, err
	}

	start := time.Now()

	if err := f.limiter.wait(ctx); err != nil {
		return repo.Snapshot{}, err
	}
	repository, resp, err := f.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		return repo.Snapshot{}, deckerrors.New(deckerrors.ErrCodeRepoUnreachable,
			fmt.Sprintf("cannot reach repository %s/%s", owner, name), err).
			WithDetail("url", repoURL)
	}
	f.updateLimiter(resp)
	branch := repository.GetDefaultBranch()

	commits, err := f.fetchCommits(ctx, owner, name)
	if err != nil {
		return repo.Snapshot{}, err
	}

	docs := f.fetchDocs(ctx, owner, name, branch)

	slog.Info("repository_fetched",
		"repo", owner+"/"+name,
		"commits", len(commits),
		"docs", len(docs),
		"duration_ms", time.Since(start).Milliseconds())

	return repo.Snapshot{
		URL:           repoURL,
		Commits:       commits,
		Documentation: docs,
	}, nil
}

func (f *Fetcher) fetchCommits(ctx context.Context, owner, name string) ([]repo.Commit, error) {
	if err := f.limiter.wait(ctx); err != nil {
		return nil, err
	}

	opts := &gh.CommitsListOptions{
		ListOptions: gh.ListOptions{PerPage: f.config.MaxCommits},
	}
	listed, resp, err := f.gh.Repositories.ListCommits(ctx, owner, name, opts)
	if err != nil {
		return nil, deckerrors.New(deckerrors.ErrCodeRepoUnreachable,
			fmt.Sprintf("cannot list commits for %s/%s", owner, name), err)
	}
	f.updateLimiter(resp)

	if len(listed) > f.config.MaxCommits {
		listed = listed[:f.config.MaxCommits]
	}

	commits := make([]repo.Commit, 0, len(listed))
	for _, c := range listed {
		commit, err := f.fetchCommit(ctx, owner, name, c.GetSHA())
		if err != nil {
			slog.Warn("commit_fetch_failed", "sha", c.GetSHA(), "error", err)
			continue
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

// fetchCommit fetches one commit with its file list and patches, then
// applies the source filters before assembling the diff.
func (f *Fetcher) fetchCommit(ctx context.Context, owner, name, sha string) (repo.Commit, error) {
	if err := f.limiter.wait(ctx); err != nil {
		return repo.Commit{}, err
	}

	full, resp, err := f.gh.Repositories.GetCommit(ctx, owner, name, sha, nil)
	if err != nil {
		return repo.Commit{}, err
	}
	f.updateLimiter(resp)

	var (
		files []string
		diff  strings.Builder
	)
	for _, cf := range full.Files {
		path := cf.GetFilename()
		if isExcludedPath(path) || !isSourceFile(path) {
			continue
		}
		if len(cf.GetPatch()) > maxFileBytes {
			continue
		}
		files = append(files, path)
		if patch := cf.GetPatch(); patch != "" {
			fmt.Fprintf(&diff, "diff --git a/%s b/%s\n%s\n", path, path, patch)
		}
	}

	meta := full.GetCommit()
	author := meta.GetAuthor()
	return repo.Commit{
		SHA:     full.GetSHA(),
		Author:  author.GetName(),
		Email:   author.GetEmail(),
		Date:    author.GetDate().Format(time.RFC3339),
		Message: strings.TrimSpace(meta.GetMessage()),
		Diff:    truncateDiff(diff.String()),
		Files:   files,
	}, nil
}

// fetchDocs walks the repository tree and downloads documentation
// files. Failures here never abort the fetch.
func (f *Fetcher) fetchDocs(ctx context.Context, owner, name, branch string) []repo.Document {
	if err := f.limiter.wait(ctx); err != nil {
		return nil
	}

	tree, resp, err := f.gh.Git.GetTree(ctx, owner, name, branch, true)
	if err != nil {
		slog.Warn("doc_tree_fetch_failed", "repo", owner+"/"+name, "error", err)
		return nil
	}
	f.updateLimiter(resp)

	var paths []string
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		path := entry.GetPath()
		if !isDocPath(path) || isExcludedPath(path) {
			continue
		}
		if entry.GetSize() > maxDocBytes {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	if len(paths) > f.config.MaxDocs {
		paths = paths[:f.config.MaxDocs]
	}

	docs := make([]repo.Document, 0, len(paths))
	for _, path := range paths {
		content, err := f.fetchFileContent(ctx, owner, name, path, branch)
		if err != nil {
			slog.Warn("doc_fetch_failed", "path", path, "error", err)
			continue
		}
		docs = append(docs, repo.Document{Path: path, Content: content})
	}
	return docs
}

func (f *Fetcher) fetchFileContent(ctx context.Context, owner, name, path, ref string) (string, error) {
	if err := f.limiter.wait(ctx); err != nil {
		return "", err
	}

	opts := &gh.RepositoryContentGetOptions{Ref: ref}
	content, _, resp, err := f.gh.Repositories.GetContents(ctx, owner, name, path, opts)
	if err != nil {
		return "", err
	}
	f.updateLimiter(resp)

	if content == nil {
		return "", fmt.Errorf("%s is a directory", path)
	}
	return content.GetContent()
}

func (f *Fetcher) updateLimiter(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	f.limiter.update(resp.Response)
}
