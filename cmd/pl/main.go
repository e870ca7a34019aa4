package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"pitchline/internal/api"
	"pitchline/internal/config"
	"pitchline/internal/directory"
	"pitchline/internal/domain"
	"pitchline/internal/ledger"
	"pitchline/internal/notify"
	"pitchline/internal/profile"
	"pitchline/internal/sandbox"
	"pitchline/internal/session"
)

var rootCmd = &cobra.Command{
	Use:   "pl",
	Short: "Pitchline CLI",
	Long: `Pitchline finds people for football matches and matches for people.
Core concepts:
- Workspace: your .pitchline directory holding the session; pitchline.yml holds server and defaults.
- Profile: one per account, created explicitly; every post and application is attributed to a profile.
- Recruit posts: mercenary, team, or match listings that stay RECRUITING until completed or cancelled.
- Applications: apply to a post, then the owner accepts or rejects; you can cancel while still pending.
- Notifications: received/accepted/rejected updates land in your mailbox ('pl notification list').`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := session.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("PITCHLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = godotenv.Load(filepath.Join(viper.GetString("workspace"), ".env"))
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("server", "", "server base URL (overrides config)")
	rootCmd.PersistentFlags().String("token", "", "bearer token (overrides stored session)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose logging")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func registerCommands() {
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(useCmd())
	rootCmd.AddCommand(profileCmd())
	rootCmd.AddCommand(postCmd())
	rootCmd.AddCommand(applyCmd())
	rootCmd.AddCommand(applicationCmd())
	rootCmd.AddCommand(notificationCmd())
	rootCmd.AddCommand(sandboxCmd())
}

// env bundles everything one command invocation needs.
type env struct {
	Config     *config.Config
	Client     *api.Client
	Session    *session.Store
	Resolver   *profile.Resolver
	Directory  *directory.Directory
	Ledger     *ledger.Ledger
	Dispatcher *notify.Dispatcher
	Log        *zap.Logger
}

func withEnv(ctx context.Context, fn func(context.Context, *env) error) error {
	workspace := viper.GetString("workspace")
	cfg, err := config.Load(workspace)
	if err != nil {
		return err
	}
	store, err := session.Open(session.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer store.Close()

	client := api.New(serverURL(cfg))
	client.Timeout = cfg.Server.Timeout
	if token := viper.GetString("token"); token != "" {
		client.BearerToken = token
	} else if token, _, err := store.Token(ctx); err == nil {
		client.BearerToken = token
	}

	log := newLogger()
	defer log.Sync()

	dispatcher := notify.NewDispatcher(client, log)
	e := &env{
		Config:     cfg,
		Client:     client,
		Session:    store,
		Resolver:   profile.New(client, store),
		Directory:  directory.New(client),
		Ledger:     ledger.New(client, dispatcher),
		Dispatcher: dispatcher,
		Log:        log,
	}
	return fn(ctx, e)
}

func serverURL(cfg *config.Config) string {
	if url := viper.GetString("server"); url != "" {
		return url
	}
	return cfg.Server.URL
}

func newLogger() *zap.Logger {
	if !viper.GetBool("verbose") {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func loginCmd() *cobra.Command {
	var account, name string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if account == "" {
				return fmt.Errorf("--account required")
			}
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				token, err := e.Client.DevLogin(ctx, account, name)
				if err != nil {
					return err
				}
				accountID, err := e.Session.SaveToken(ctx, token)
				if err != nil {
					return err
				}
				e.Client.BearerToken = token
				e.Resolver.Invalidate(ctx)
				p, err := e.Resolver.Resolve(ctx)
				if errors.Is(err, domain.ErrProfileNotFound) {
					fmt.Printf("Logged in as %s. No profile yet; run 'pl profile create --name <name>'.\n", accountID)
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Printf("Logged in as %s (profile %d, %s)\n", accountID, p.ID, p.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "account id")
	cmd.Flags().StringVar(&name, "name", "", "provision a profile with this name if none exists")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				return e.Session.Reset(ctx)
			})
		},
	}
}

func useCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <server-url>",
		Short: "Set the server URL for this workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := strings.TrimSpace(args[0])
			if url == "" {
				return fmt.Errorf("server url is required")
			}
			workspace := viper.GetString("workspace")
			if err := setEnvValue(filepath.Join(workspace, ".env"), "PITCHLINE_SERVER", url); err != nil {
				return err
			}
			fmt.Printf("Set PITCHLINE_SERVER=%s in %s/.env\n", url, workspace)
			return nil
		},
	}
}

func profileCmd() *cobra.Command {
	prof := &cobra.Command{Use: "profile", Short: "Manage your profile"}
	prof.AddCommand(profileShowCmd())
	prof.AddCommand(profileCreateCmd())
	prof.AddCommand(profileUpdateCmd())
	return prof
}

func profileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the session profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				p, err := e.Resolver.Resolve(ctx)
				if err != nil {
					return err
				}
				return printJSONOrTable(p)
			})
		},
	}
}

func profileCreateCmd() *cobra.Command {
	var req api.CreateProfileRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				if req.Region == "" {
					req.Region = e.Config.Defaults.Region
				}
				if req.SubRegion == "" {
					req.SubRegion = e.Config.Defaults.SubRegion
				}
				if req.Position == "" {
					req.Position = e.Config.Defaults.Position
				}
				p, err := e.Resolver.Provision(ctx, req)
				if err != nil {
					return err
				}
				return printJSONOrTable(p)
			})
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Region, "region", "", "region")
	cmd.Flags().StringVar(&req.SubRegion, "sub-region", "", "sub-region")
	cmd.Flags().StringVar(&req.Position, "position", "", "preferred position")
	cmd.Flags().StringVar(&req.Contact, "contact", "", "contact")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func profileUpdateCmd() *cobra.Command {
	var name, region, subRegion, position, contact string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				var req api.UpdateProfileRequest
				if cmd.Flags().Changed("name") {
					req.Name = &name
				}
				if cmd.Flags().Changed("region") {
					req.Region = &region
				}
				if cmd.Flags().Changed("sub-region") {
					req.SubRegion = &subRegion
				}
				if cmd.Flags().Changed("position") {
					req.Position = &position
				}
				if cmd.Flags().Changed("contact") {
					req.Contact = &contact
				}
				p, err := e.Resolver.Update(ctx, req)
				if err != nil {
					return err
				}
				return printJSONOrTable(p)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&region, "region", "", "region")
	cmd.Flags().StringVar(&subRegion, "sub-region", "", "sub-region")
	cmd.Flags().StringVar(&position, "position", "", "preferred position")
	cmd.Flags().StringVar(&contact, "contact", "", "contact")
	return cmd
}

func postCmd() *cobra.Command {
	post := &cobra.Command{
		Use:     "post",
		Aliases: []string{"posts"},
		Short:   "Browse and manage recruit posts",
		Long:  "Recruit posts come in three categories: mercenary (a team needs players), team (a player seeks a team), and match (a team seeks an opponent).",
	}
	post.AddCommand(postListCmd())
	post.AddCommand(postShowCmd())
	post.AddCommand(postCreateCmd())
	post.AddCommand(postEditCmd())
	post.AddCommand(postDeleteCmd())
	return post
}

func postListCmd() *cobra.Command {
	var category, region, subRegion, keyword, status, focus string
	var page, size int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recruit posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				cat := domain.Category(category)
				if size == 0 {
					size = e.Config.Defaults.PageSize
				}
				if region == "" {
					region = e.Config.Defaults.Region
				}
				if _, err := e.Directory.Load(ctx, cat, page, size); err != nil {
					return err
				}
				var posts []domain.RecruitPost
				if focus != "" {
					posts = e.Directory.Focused(cat, focus)
				} else {
					posts = e.Directory.Posts(cat)
				}
				posts = directory.Filter(posts,
					directory.ByRegion(region),
					directory.BySubRegion(subRegion),
					directory.ByKeyword(keyword),
					directory.ByStatus(domain.PostStatus(status)),
				)
				if viper.GetBool("json") {
					return printJSON(posts)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Title", "Status", "Region", "Match At", "Accepted"})
				for _, p := range posts {
					matchAt := ""
					if p.MatchAt != nil {
						matchAt = p.MatchAt.Format(time.RFC3339)
					}
					accepted := fmt.Sprint(p.AcceptedCount)
					if p.RequiredPersonnel > 0 {
						accepted = fmt.Sprintf("%d/%d", p.AcceptedCount, p.RequiredPersonnel)
					}
					tw.AppendRow(table.Row{p.ID, p.Title, p.Status, p.Region, matchAt, accepted})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "mercenary", "category (mercenary, team, match)")
	cmd.Flags().StringVar(&region, "region", "", "region filter")
	cmd.Flags().StringVar(&subRegion, "sub-region", "", "sub-region filter")
	cmd.Flags().StringVar(&keyword, "q", "", "keyword filter on title and content")
	cmd.Flags().StringVar(&status, "status", "", "status filter (RECRUITING, COMPLETED, CANCELLED)")
	cmd.Flags().StringVar(&focus, "focus", "", "post id to sort to the front")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&size, "size", 0, "page size")
	return cmd
}

func postShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <post-id>",
		Short: "Show one recruit post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				p, err := e.Directory.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(p)
			})
		},
	}
}

func postCreateCmd() *cobra.Command {
	var req api.CreateRecruitPostRequest
	var category, targetType, matchAt string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a recruit post",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				me, err := e.Resolver.Resolve(ctx)
				if err != nil {
					return err
				}
				req.OwnerProfileID = me.ID
				req.Category = domain.Category(category)
				req.TargetType = domain.TargetType(targetType)
				if req.Region == "" {
					req.Region = e.Config.Defaults.Region
				}
				if req.SubRegion == "" {
					req.SubRegion = e.Config.Defaults.SubRegion
				}
				if matchAt != "" {
					t, err := time.Parse(time.RFC3339, matchAt)
					if err != nil {
						return fmt.Errorf("invalid --match-at, want RFC3339: %w", err)
					}
					req.MatchAt = &t
				}
				p, err := e.Directory.Create(ctx, req)
				if err != nil {
					return err
				}
				return printJSONOrTable(p)
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "mercenary", "category (mercenary, team, match)")
	cmd.Flags().StringVar(&targetType, "target", "individual", "target type (individual, team)")
	cmd.Flags().StringVar(&req.Title, "title", "", "title")
	cmd.Flags().StringVar(&req.Content, "content", "", "content")
	cmd.Flags().StringVar(&req.Region, "region", "", "region")
	cmd.Flags().StringVar(&req.SubRegion, "sub-region", "", "sub-region")
	cmd.Flags().StringVar(&matchAt, "match-at", "", "match time (RFC3339)")
	cmd.Flags().IntVar(&req.RequiredPersonnel, "personnel", 0, "required personnel (0 for unbounded)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func postEditCmd() *cobra.Command {
	var title, content, region, subRegion, matchAt, status string
	var personnel int
	cmd := &cobra.Command{
		Use:   "edit <post-id>",
		Short: "Edit a recruit post you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				me, err := e.Resolver.Resolve(ctx)
				if err != nil {
					return err
				}
				post, err := e.Directory.Get(ctx, args[0])
				if err != nil {
					return err
				}
				var req api.UpdateRecruitPostRequest
				if cmd.Flags().Changed("title") {
					req.Title = &title
				}
				if cmd.Flags().Changed("content") {
					req.Content = &content
				}
				if cmd.Flags().Changed("region") {
					req.Region = &region
				}
				if cmd.Flags().Changed("sub-region") {
					req.SubRegion = &subRegion
				}
				if cmd.Flags().Changed("personnel") {
					req.RequiredPersonnel = &personnel
				}
				if cmd.Flags().Changed("match-at") {
					t, err := time.Parse(time.RFC3339, matchAt)
					if err != nil {
						return fmt.Errorf("invalid --match-at, want RFC3339: %w", err)
					}
					req.MatchAt = &t
				}
				if cmd.Flags().Changed("status") {
					s := domain.PostStatus(status)
					req.Status = &s
				}
				updated, err := e.Directory.Update(ctx, post, me.ID, req)
				if err != nil {
					return err
				}
				return printJSONOrTable(updated)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "title")
	cmd.Flags().StringVar(&content, "content", "", "content")
	cmd.Flags().StringVar(&region, "region", "", "region")
	cmd.Flags().StringVar(&subRegion, "sub-region", "", "sub-region")
	cmd.Flags().StringVar(&matchAt, "match-at", "", "match time (RFC3339)")
	cmd.Flags().StringVar(&status, "status", "", "status (RECRUITING, COMPLETED, CANCELLED)")
	cmd.Flags().IntVar(&personnel, "personnel", 0, "required personnel")
	return cmd
}

func postDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <post-id>",
		Short: "Delete a recruit post you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				me, err := e.Resolver.Resolve(ctx)
				if err != nil {
					return err
				}
				post, err := e.Directory.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return e.Directory.Remove(ctx, post, me.ID)
			})
		},
	}
}

func applyCmd() *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "apply <post-id>",
		Short: "Apply to a recruit post",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("post id required")
			}
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				me, err := e.Resolver.Resolve(ctx)
				if err != nil {
					return err
				}
				app, err := e.Ledger.Submit(ctx, args[0], me.ID, message)
				if err != nil {
					return err
				}
				return printJSONOrTable(app)
			})
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "message to the post owner")
	return cmd
}

func applicationCmd() *cobra.Command {
	app := &cobra.Command{
		Use:     "application",
		Aliases: []string{"applications", "app"},
		Short:   "Track and decide applications",
	}
	app.AddCommand(applicationMineCmd())
	app.AddCommand(applicationReceivedCmd())
	app.AddCommand(applicationDecideCmd("accept", "Accept a pending application to a post you own"))
	app.AddCommand(applicationDecideCmd("reject", "Reject a pending application to a post you own"))
	app.AddCommand(applicationCancelCmd())
	return app
}

func applicationMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List applications you sent",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				me, err := e.Resolver.Resolve(ctx)
				if err != nil {
					return err
				}
				apps, err := e.Ledger.ListMine(ctx, me.ID)
				if err != nil {
					return err
				}
				return printApplications(apps)
			})
		},
	}
}

func applicationReceivedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "received",
		Short: "List applications to posts you own",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				me, err := e.Resolver.Resolve(ctx)
				if err != nil {
					return err
				}
				apps, err := e.Ledger.ListReceived(ctx, me.ID)
				if err != nil {
					return err
				}
				return printApplications(apps)
			})
		},
	}
}

func applicationDecideCmd(verb, short string) *cobra.Command {
	var postID string
	cmd := &cobra.Command{
		Use:   verb + " <application-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if postID == "" {
				return fmt.Errorf("--post required")
			}
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				me, err := e.Resolver.Resolve(ctx)
				if err != nil {
					return err
				}
				if verb == "accept" {
					err = e.Ledger.Accept(ctx, args[0], postID, me.ID)
				} else {
					err = e.Ledger.Reject(ctx, args[0], postID, me.ID)
				}
				if err != nil {
					return err
				}
				fmt.Printf("Application %s %sed\n", args[0], verb)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&postID, "post", "", "post id the application belongs to")
	_ = cmd.MarkFlagRequired("post")
	return cmd
}

func applicationCancelCmd() *cobra.Command {
	var postID string
	cmd := &cobra.Command{
		Use:   "cancel <application-id>",
		Short: "Cancel a pending application you sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if postID == "" {
				return fmt.Errorf("--post required")
			}
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				me, err := e.Resolver.Resolve(ctx)
				if err != nil {
					return err
				}
				if err := e.Ledger.Cancel(ctx, args[0], postID, me.ID); err != nil {
					return err
				}
				fmt.Printf("Application %s cancelled\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&postID, "post", "", "post id the application belongs to")
	_ = cmd.MarkFlagRequired("post")
	return cmd
}

func notificationCmd() *cobra.Command {
	n := &cobra.Command{
		Use:     "notification",
		Aliases: []string{"notifications", "notif"},
		Short:   "Read your mailbox",
	}
	n.AddCommand(notificationListCmd())
	n.AddCommand(notificationReadCmd())
	n.AddCommand(notificationDeleteCmd())
	return n
}

func notificationListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				me, err := e.Resolver.Resolve(ctx)
				if err != nil {
					return err
				}
				ns, err := e.Dispatcher.List(ctx, me.ID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(ns)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Type", "Message", "Read", "At"})
				for _, n := range ns {
					tw.AppendRow(table.Row{n.ID, n.Type, n.Message, n.Read, n.CreatedAt.Format(time.RFC3339)})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func notificationReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark a notification read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				n, err := e.Dispatcher.MarkRead(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(n)
			})
		},
	}
}

func notificationDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <notification-id>",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				return e.Dispatcher.Delete(ctx, args[0])
			})
		},
	}
}

func sandboxCmd() *cobra.Command {
	var addr, basePath, secret string
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Run the in-memory sandbox server",
		Long:  "The sandbox speaks the same API the production store does, backed by memory. Point 'pl use' at it for local development.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			defer log.Sync()
			handler := sandbox.New(sandbox.Config{Secret: secret, BasePath: basePath, Log: log})
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Pitchline sandbox on http://%s%s\n", addr, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	cmd.Flags().StringVar(&secret, "secret", "", "token signing secret (dev default when empty)")
	return cmd
}

// --- helpers ---

func printApplications(apps []domain.Application) error {
	if viper.GetBool("json") {
		return printJSON(apps)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Post", "Applicant", "Status", "At"})
	for _, a := range apps {
		tw.AppendRow(table.Row{a.ID, a.PostID, a.ApplicantProfileID, a.Status, a.CreatedAt.Format(time.RFC3339)})
	}
	tw.Render()
	return nil
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setEnvValue(path, key, value string) error {
	var lines []string
	seen := false
	f, err := os.Open(path)
	if err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(line, key+"=") {
				lines = append(lines, fmt.Sprintf("%s=%s", key, value))
				seen = true
			} else {
				lines = append(lines, line)
			}
		}
		if err := scanner.Err(); err != nil {
			f.Close()
			return err
		}
		f.Close()
	} else if !os.IsNotExist(err) {
		return err
	}
	if !seen {
		lines = append(lines, fmt.Sprintf("%s=%s", key, value))
	}
	content := strings.Join(lines, "\n")
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
