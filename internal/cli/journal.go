package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/etrace/internal/nal"
	"github.com/roach88/etrace/internal/store"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	Database    string
	Cycle       int64
	Fingerprint string
}

// SessionView is one journaled session.
type SessionView struct {
	ID         string `json:"id"`
	Seed       uint64 `json:"seed"`
	ParamsHash string `json:"params_hash"`
	Admissions int    `json:"admissions"`
}

// AdmissionView is one journaled admission.
type AdmissionView struct {
	SessionID   string     `json:"session_id"`
	Seq         int64      `json:"seq"`
	Cycle       int64      `json:"cycle"`
	Label       string     `json:"label"`
	Sentence    string     `json:"sentence"`
	Evidence    []int64    `json:"evidence"`
	Budget      nal.Budget `json:"budget"`
	Fingerprint string     `json:"fingerprint"`
}

// SessionDetail is a session with its admissions.
type SessionDetail struct {
	Session    SessionView     `json:"session"`
	Params     string          `json:"params"`
	Admissions []AdmissionView `json:"admissions"`
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal [session-id]",
		Short: "Inspect a SQLite admission journal",
		Long: `List the sessions in a journal, or the admissions of one session.

Without a session id, every session is listed with its seed, parameter
hash and admission count. With a session id, its admissions are listed in
admission order; --cycle restricts them to one cycle. --fingerprint finds
every admission of one sentence across all sessions.

Examples:
  etrace journal --db ./etrace.db
  etrace journal --db ./etrace.db 0192c3a4-...
  etrace journal --db ./etrace.db 0192c3a4-... --cycle 21
  etrace journal --db ./etrace.db --fingerprint 9f2c...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().Int64Var(&opts.Cycle, "cycle", 0, "only admissions flushed in this cycle")
	cmd.Flags().StringVar(&opts.Fingerprint, "fingerprint", "", "find admissions of a sentence fingerprint")

	return cmd
}

func runJournal(opts *JournalOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	if opts.Fingerprint != "" && len(args) > 0 {
		return NewExitError(ExitCommandError, "--fingerprint searches all sessions; omit the session id")
	}
	if cmd.Flags().Changed("cycle") && len(args) == 0 {
		return NewExitError(ExitCommandError, "--cycle requires a session id")
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer closeStore(st, newLogger(opts.RootOptions, cmd.ErrOrStderr()))

	switch {
	case opts.Fingerprint != "":
		admissions, err := st.FindByFingerprint(ctx, opts.Fingerprint)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to search journal", err)
		}
		views := admissionViews(admissions)
		return formatter.Success(views, func(w io.Writer) {
			if len(views) == 0 {
				fmt.Fprintf(w, "No admissions with fingerprint %s\n", opts.Fingerprint)
				return
			}
			writeAdmissions(w, views, true)
		})

	case len(args) == 1:
		return showSession(ctx, st, opts, args[0], cmd, formatter)

	default:
		return listSessions(ctx, st, formatter)
	}
}

func listSessions(ctx context.Context, st *store.Store, formatter *OutputFormatter) error {
	sessions, err := st.ReadSessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read sessions", err)
	}

	views := make([]SessionView, 0, len(sessions))
	for _, s := range sessions {
		v, err := sessionView(ctx, st, s)
		if err != nil {
			return err
		}
		views = append(views, v)
	}

	return formatter.Success(views, func(w io.Writer) {
		if len(views) == 0 {
			fmt.Fprintln(w, "No sessions recorded.")
			return
		}
		for _, v := range views {
			fmt.Fprintf(w, "%s  seed=%d  params=%s  admissions=%d\n",
				v.ID, v.Seed, shortHash(v.ParamsHash), v.Admissions)
		}
	})
}

func showSession(ctx context.Context, st *store.Store, opts *JournalOptions, id string, cmd *cobra.Command, formatter *OutputFormatter) error {
	sess, err := st.ReadSession(ctx, id)
	if errors.Is(err, store.ErrSessionNotFound) {
		return WrapExitError(ExitCommandError, "unknown session", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}

	var admissions []store.Admission
	if cmd.Flags().Changed("cycle") {
		admissions, err = st.ReadCycle(ctx, id, opts.Cycle)
	} else {
		admissions, err = st.ReadAdmissions(ctx, id)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read admissions", err)
	}

	view, err := sessionView(ctx, st, sess)
	if err != nil {
		return err
	}
	detail := SessionDetail{Session: view, Params: sess.Params, Admissions: admissionViews(admissions)}

	return formatter.Success(detail, func(w io.Writer) {
		fmt.Fprintf(w, "Session: %s\n", view.ID)
		fmt.Fprintf(w, "Seed:    %d\n", view.Seed)
		fmt.Fprintf(w, "Params:  %s\n", shortHash(view.ParamsHash))
		if opts.Verbose {
			fmt.Fprintf(w, "         %s\n", sess.Params)
		}
		fmt.Fprintln(w)
		if len(detail.Admissions) == 0 {
			fmt.Fprintln(w, "  (no admissions)")
			return
		}
		writeAdmissions(w, detail.Admissions, false)
	})
}

func sessionView(ctx context.Context, st *store.Store, s store.Session) (SessionView, error) {
	n, err := st.CountAdmissions(ctx, s.ID)
	if err != nil {
		return SessionView{}, WrapExitError(ExitCommandError, "failed to count admissions", err)
	}
	return SessionView{ID: s.ID, Seed: s.Seed, ParamsHash: s.ParamsHash, Admissions: n}, nil
}

func admissionViews(admissions []store.Admission) []AdmissionView {
	views := make([]AdmissionView, len(admissions))
	for i, a := range admissions {
		views[i] = AdmissionView{
			SessionID:   a.SessionID,
			Seq:         a.Seq,
			Cycle:       a.Cycle,
			Label:       a.Label,
			Sentence:    formatSentence(a),
			Evidence:    a.Evidence,
			Budget:      a.Budget,
			Fingerprint: a.Fingerprint,
		}
	}
	return views
}

// formatSentence prints an admission the way nal.Sentence prints itself.
func formatSentence(a store.Admission) string {
	var b strings.Builder
	b.WriteString(a.Term)
	b.WriteString(a.Punctuation)
	if a.Occurrence != nil {
		b.WriteString(" :|")
		b.WriteString(strconv.FormatInt(*a.Occurrence, 10))
		b.WriteString("|:")
	}
	if a.Punctuation != string(rune(nal.Question)) {
		b.WriteByte(' ')
		b.WriteString(nal.NewTruth(a.Frequency, a.Confidence).String())
	}
	return b.String()
}

func writeAdmissions(w io.Writer, views []AdmissionView, withSession bool) {
	for _, v := range views {
		if withSession {
			fmt.Fprintf(w, "%s ", v.SessionID)
		}
		fmt.Fprintf(w, "[%d] cycle=%d %-7s %s\n", v.Seq, v.Cycle, v.Label, v.Sentence)
	}
}

// shortHash truncates a long hash for display.
func shortHash(h string) string {
	if len(h) <= 16 {
		return h
	}
	return h[:8] + "..." + h[len(h)-8:]
}
