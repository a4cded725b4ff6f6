package main

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/filter"
	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/memory"
	"github.com/DjordjeVuckovic/alumni-memories/internal/history"
	"github.com/DjordjeVuckovic/alumni-memories/internal/notify"
	"github.com/DjordjeVuckovic/alumni-memories/internal/objectstore"
	"github.com/DjordjeVuckovic/alumni-memories/internal/search/session"
	"github.com/DjordjeVuckovic/alumni-memories/internal/upload"
	"github.com/DjordjeVuckovic/alumni-memories/pkg/config/env"
	"github.com/spf13/cobra"
)

const historyNamespace = "memoriesctl"

// withSession opens the backend and a session over it for the duration of fn.
func (g *globals) withSession(ctx context.Context, fn func(s *session.Session) error) error {
	backend, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	newHistory, closeHistory, err := history.NewFactory(history.LoadEnv())
	if err != nil {
		return err
	}
	defer func() { _ = closeHistory() }()

	s := session.New(ctx, backend.Store, newHistory(historyNamespace),
		session.WithNotifier(notify.NewSlogNotifier(slog.Default())))
	defer s.Close()

	return fn(s)
}

func newSearchCmd(g *globals) *cobra.Command {
	var (
		tags   []string
		author string
		public string
		limit  int
		more   int
		sortBy string
		order  string
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search memories",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []filter.Option{filter.WithLimit(limit), filter.WithTags(tags...), filter.WithAuthor(author)}
			if len(args) == 1 {
				opts = append(opts, filter.WithQuery(args[0]))
			}
			if public != "" {
				b, err := strconv.ParseBool(public)
				if err != nil {
					return fmt.Errorf("--public must be true or false")
				}
				opts = append(opts, filter.WithPublic(b))
			}
			if sortBy != "" || order != "" {
				opts = append(opts, filter.WithSort(filter.SortKey(sortBy), filter.SortOrder(order)))
			}
			f := filter.New(opts...)

			return g.withSession(cmd.Context(), func(s *session.Session) error {
				st, err := s.Search(cmd.Context(), f)
				if err != nil {
					return err
				}
				for i := 0; i < more && st.HasMore && st.Status == session.StatusResults; i++ {
					if st, err = s.LoadMore(cmd.Context(), f); err != nil {
						return err
					}
				}
				if st.Status == session.StatusError {
					return fmt.Errorf("search failed: %s", st.Error)
				}
				if g.asJSON {
					return g.printJSON(st)
				}
				return g.printResults(st)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Match memories having any of these tags")
	cmd.Flags().StringVar(&author, "author", "", "Author ID")
	cmd.Flags().StringVar(&public, "public", "", "Visibility: true or false (default any)")
	cmd.Flags().IntVarP(&limit, "limit", "n", filter.DefaultLimit, "Page size")
	cmd.Flags().IntVar(&more, "more", 0, "Number of additional pages to load")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort field: createdAt, updatedAt or title")
	cmd.Flags().StringVar(&order, "order", "", "Sort order: asc or desc")
	return cmd
}

func newSuggestCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest TEXT",
		Short: "Suggest tags, authors, locations and people starting with TEXT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withSession(cmd.Context(), func(s *session.Session) error {
				out := s.Suggestions(cmd.Context(), args[0])
				if g.asJSON {
					return g.printJSON(out)
				}
				tw := tabwriter.NewWriter(g.out, 0, 4, 2, ' ', 0)
				for _, sg := range out {
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\n", sg.Kind, sg.Value, sg.Count)
				}
				return tw.Flush()
			})
		},
	}
}

func newPopularTagsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "popular-tags",
		Short: "Show the most used tags of recent public memories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withSession(cmd.Context(), func(s *session.Session) error {
				tags := s.Snapshot().PopularTags
				if g.asJSON {
					return g.printJSON(tags)
				}
				tw := tabwriter.NewWriter(g.out, 0, 4, 2, ' ', 0)
				for _, t := range tags {
					_, _ = fmt.Fprintf(tw, "%s\t%d\n", t.Tag, t.Count)
				}
				return tw.Flush()
			})
		},
	}
}

func newUploadCmd(g *globals) *cobra.Command {
	var folder, dir, baseURL string

	cmd := &cobra.Command{
		Use:   "upload FILE...",
		Short: "Compress and store media files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := upload.LoadEnv()
			if err != nil {
				return err
			}
			opts = opts.WithFolder(folder)

			files := make([]upload.File, 0, len(args))
			for _, p := range args {
				data, err := os.ReadFile(p)
				if err != nil {
					return fmt.Errorf("read %s: %w", p, err)
				}
				files = append(files, upload.File{
					Name:        filepath.Base(p),
					ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(p))),
					Data:        data,
				})
			}

			bucket, err := objectstore.NewFSBucket(dir, baseURL)
			if err != nil {
				return err
			}
			p := upload.NewPipeline(bucket, upload.WithNotifier(notify.NewSlogNotifier(slog.Default())))
			results := p.UploadFiles(cmd.Context(), files, opts)

			if g.asJSON {
				if err := g.printJSON(results); err != nil {
					return err
				}
			} else {
				tw := tabwriter.NewWriter(g.out, 0, 4, 2, ' ', 0)
				for _, r := range results {
					if r.Success {
						_, _ = fmt.Fprintf(tw, "ok\t%s\t%d -> %d bytes\t%s\n", r.FileName, r.OriginalSize, r.CompressedSize, r.URL)
					} else {
						_, _ = fmt.Fprintf(tw, "failed\t%s\t%s\n", r.FileName, r.Error)
					}
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}

			if st := p.Stats(); st.Failed > 0 {
				return fmt.Errorf("%d of %d uploads failed", st.Failed, st.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", upload.DefaultFolder, "Destination folder")
	cmd.Flags().StringVar(&dir, "dir", env.String("OBJECT_STORE_DIR", objectstore.DefaultDir), "Object store directory")
	cmd.Flags().StringVar(&baseURL, "base-url", env.String("OBJECT_STORE_BASE_URL", objectstore.DefaultBaseURL), "Public URL prefix of stored objects")
	return cmd
}

func newSeedCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Bulk-load memories from a JSON array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			n, err := seedFromFile(cmd.Context(), backend.Store, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(g.out, "seeded %d memories\n", n)
			return err
		},
	}
}

func (g *globals) printResults(st session.State) error {
	tw := tabwriter.NewWriter(g.out, 0, 4, 2, ' ', 0)
	for _, r := range st.Results {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, score(r), r.CreatedAt.Format("2006-01-02"), r.Title, strings.Join(r.Tags, ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(g.out, "%d result(s), more: %t\n", len(st.Results), st.HasMore)
	return err
}

func score(r memory.SearchResult) string {
	if r.Score == nil {
		return "-"
	}
	return strconv.FormatFloat(*r.Score, 'f', 2, 64)
}
