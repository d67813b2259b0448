package cli

import (
	"strings"

	"github.com/dmitrijs2005/storeit/internal/client/models"
	"github.com/spf13/cobra"
)

// appFn yields the App a command runs against. The one-shot root builds it
// after flag parsing; the shell hands out its own.
type appFn func() *App

// fileCommands are the commands available both from the command line and
// inside the shell.
func fileCommands(app appFn) []*cobra.Command {
	return []*cobra.Command{
		signInCmd(app),
		signUpCmd(app),
		signOutCmd(app),
		whoAmICmd(app),
		listCmd(app),
		usageCmd(app),
		uploadCmd(app),
		queueCmd(app),
		cancelCmd(app),
		watchCmd(app),
		renameCmd(app),
		shareCmd(app),
		unshareCmd(app),
		accessersCmd(app),
		trashCmd(app),
		restoreCmd(app),
		deleteCmd(app),
		detailsCmd(app),
		downloadCmd(app),
		editCmd(app),
		searchCmd(app),
		findCmd(app),
	}
}

func signInCmd(app appFn) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app().SignIn(cmd.Context(), email)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email (prompted when empty)")
	return cmd
}

func signUpCmd(app appFn) *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app().SignUp(cmd.Context(), name, email)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "full name (prompted when empty)")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email (prompted when empty)")
	return cmd
}

func signOutCmd(app appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app().SignOut(cmd.Context())
		},
	}
}

func whoAmICmd(app appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app().WhoAmI(cmd.Context())
		},
	}
}

func listCmd(app appFn) *cobra.Command {
	var sort string
	cmd := &cobra.Command{
		Use:       "ls [all|documents|images|media|others|shared|trash]",
		Aliases:   []string{"list", "l"},
		Short:     "List files",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{listAll, "documents", "images", "media", "others", listShared, listTrash},
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := models.ParseSortKey(sort)
			if err != nil {
				return err
			}
			listing := listAll
			if len(args) == 1 {
				listing = args[0]
			}
			return app().List(cmd.Context(), listing, key)
		},
	}
	cmd.Flags().StringVar(&sort, "sort", string(models.DefaultSort),
		"sort key for type and shared listings: date-desc, date-asc, name-asc, name-desc, size-desc, size-asc")
	return cmd
}

func usageCmd(app appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show storage used per file type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app().Usage(cmd.Context())
		},
	}
}

func uploadCmd(app appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <path>...",
		Short: "Upload one or more files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Upload(cmd.Context(), args)
		},
	}
}

func queueCmd(app appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show uploads in progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app().Queue(cmd.Context())
		},
	}
}

func cancelCmd(app appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <upload-id>",
		Short: "Remove an upload from the queue and abort it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().CancelUpload(cmd.Context(), args[0])
		},
	}
}

func watchCmd(app appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <dir>",
		Short: "Upload every file written into a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Watch(cmd.Context(), args[0])
		},
	}
}

func renameCmd(app appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name> <new-name>",
		Short: "Rename one of your files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Rename(cmd.Context(), args[0], args[1])
		},
	}
}

func shareCmd(app appFn) *cobra.Command {
	var perm string
	cmd := &cobra.Command{
		Use:   "share <name> <email>",
		Short: "Give another user access to one of your files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := models.ParsePermission(perm)
			if err != nil {
				return err
			}
			return app().Share(cmd.Context(), args[0], args[1], p)
		},
	}
	cmd.Flags().StringVarP(&perm, "permission", "p", string(models.PermissionView), "view or edit")
	return cmd
}

func unshareCmd(app appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "unshare <name> <email>",
		Short: "Revoke a user's access to one of your files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Unshare(cmd.Context(), args[0], args[1])
		},
	}
}

func accessersCmd(app appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "accessers <name>",
		Short: "List who has access to one of your files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Accessers(cmd.Context(), args[0])
		},
	}
}

func trashCmd(app appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "trash <name>",
		Short: "Move one of your files to the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Trash(cmd.Context(), args[0])
		},
	}
}

func restoreCmd(app appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <name>",
		Short: "Restore a file from the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Restore(cmd.Context(), args[0])
		},
	}
}

func deleteCmd(app appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Permanently delete a file from the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Delete(cmd.Context(), args[0])
		},
	}
}

func detailsCmd(app appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "details <name>",
		Short: "Show file details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Details(cmd.Context(), args[0])
		},
	}
}

func downloadCmd(app appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "download <name> [dir]",
		Short: "Save a file through its signed link",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 2 {
				dir = args[1]
			}
			return app().Download(cmd.Context(), args[0], dir)
		},
	}
}

func editCmd(app appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <shared-name> <path>",
		Short: "Replace a file shared with you for editing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Edit(cmd.Context(), args[0], args[1])
		},
	}
}

func searchCmd(app appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search your files by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Search(cmd.Context(), strings.Join(args, " "))
		},
	}
}

func findCmd(app appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "find",
		Short: "Search interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app().Find(cmd.Context())
		},
	}
}

func versionCmd(print func()) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			print()
		},
	}
}

// helpText is the shell's short command summary.
func helpText(signedIn bool) string {
	if !signedIn {
		return "Available commands: signin, signup, help <command>, exit"
	}
	return "Available commands: ls, usage, upload, queue, cancel, watch, rename, share, unshare, " +
		"accessers, trash, restore, delete, details, download, edit, search, find, whoami, signout, " +
		"help <command>, exit"
}
