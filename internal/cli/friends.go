package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/avlund/tend/internal/engine"
	"github.com/avlund/tend/internal/friend"
	"github.com/avlund/tend/internal/health"
)

// resolveFriend finds a friend by exact ID, exact name, or unambiguous name
// prefix (case-insensitive).
func resolveFriend(eng *engine.Engine, arg string) (*friend.Friend, error) {
	if f, err := eng.DB.GetFriend(arg); err == nil {
		return f, nil
	}

	friends, err := eng.DB.ListFriends()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(arg)
	var matches []friend.Friend
	for _, f := range friends {
		name := strings.ToLower(f.Name)
		if name == needle {
			matches = []friend.Friend{f}
			break
		}
		if strings.HasPrefix(name, needle) {
			matches = append(matches, f)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no friend matching %q", arg)
	case 1:
		return eng.DB.GetFriend(matches[0].ID)
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name
		}
		return nil, fmt.Errorf("%q is ambiguous: %s", arg, strings.Join(names, ", "))
	}
}

// parseDay parses a YYYY-MM-DD flag value in the tuning's location.
func parseDay(eng *engine.Engine, s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, eng.Tuning.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// --- list command ---

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List friends, most in need of attention first",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	// Scores must be decayed before they are shown or compared.
	if _, err := eng.DecayAll(); err != nil {
		return fmt.Errorf("decay pass: %w", err)
	}

	friends, err := db.ListFriends()
	if err != nil {
		return err
	}
	if len(friends) == 0 {
		fmt.Println("No friends yet. Add one with: tend add NAME")
		return nil
	}

	now := eng.Now()
	friend.SortByNeed(friends, now, eng.Tuning)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tHEALTH\tSTATUS\tLAST CONTACT\tCATEGORIES")
	for _, f := range friends {
		status := f.Status(now, eng.Tuning)
		var cats []string
		for _, c := range f.Categories {
			cats = append(cats, c.Name)
		}
		extra := ""
		if f.BirthdayToday(now, eng.Tuning) {
			extra = " 🎂"
		}
		fmt.Fprintf(w, "%s%s\t%.0f\t%s %s\t%dd ago\t%s\n",
			f.Name, extra, f.HealthScore, status.Emoji(), status,
			f.DaysSinceContact(now, eng.Tuning), strings.Join(cats, ","))
	}
	return w.Flush()
}

// --- add command ---

var (
	addLastContact string
	addDaysAgo     int
	addNotes       string
	addPhone       string
	addBirthday    string
)

var addCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a friend",
	Long:  "Add a friend. Without --last-contact or --days-ago the last contact is assumed to be 14 days ago and the starting health is derived from that gap.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	params := engine.CreateParams{Name: args[0], Notes: addNotes, Phone: addPhone}

	if addLastContact != "" {
		t, err := parseDay(eng, addLastContact)
		if err != nil {
			return err
		}
		params.LastContact = &t
	} else if addDaysAgo > 0 {
		t := eng.Now().AddDate(0, 0, -addDaysAgo)
		params.LastContact = &t
	}
	if addBirthday != "" {
		b, err := parseDay(eng, addBirthday)
		if err != nil {
			return err
		}
		params.Birthday = &b
	}

	f, err := eng.CreateFriend(params)
	if err != nil {
		return err
	}

	status := f.Status(eng.Now(), eng.Tuning)
	fmt.Printf("Added %s — health %.0f %s %s\n", f.Name, f.HealthScore, status.Emoji(), status)
	return nil
}

// --- log command ---

var (
	logNote string
	logDate string
)

var logCmd = &cobra.Command{
	Use:   "log FRIEND TYPE",
	Short: "Log an interaction (hangout, call, text, social)",
	Args:  cobra.ExactArgs(2),
	RunE:  runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := eng.DecayAll(); err != nil {
		return fmt.Errorf("decay pass: %w", err)
	}

	f, err := resolveFriend(eng, args[0])
	if err != nil {
		return err
	}

	typ := health.InteractionType(args[1])
	var date *time.Time
	if logDate != "" {
		t, err := parseDay(eng, logDate)
		if err != nil {
			return err
		}
		date = &t
	}

	updated, res, err := eng.LogInteraction(f.ID, typ, logNote, date)
	if err != nil {
		return err
	}

	fmt.Printf("Logged %s with %s — health %.0f %s %s\n",
		typ.Label(), updated.Name, res.Score, res.Status.Emoji(), res.Status)
	if res.Resurrected() {
		fmt.Printf("✨ %s is no longer a ghost!\n", updated.Name)
	}
	return nil
}

// --- show command ---

var showCmd = &cobra.Command{
	Use:   "show FRIEND",
	Short: "Show a friend's health and interaction history",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := eng.DecayAll(); err != nil {
		return fmt.Errorf("decay pass: %w", err)
	}

	f, err := resolveFriend(eng, args[0])
	if err != nil {
		return err
	}

	now := eng.Now()
	status := f.Status(now, eng.Tuning)

	fmt.Printf("%s %s\n", status.Emoji(), f.Name)
	fmt.Printf("  health: %.1f (%s)\n", f.HealthScore, status)
	fmt.Printf("  last contact: %s (%d days ago)\n",
		f.LastContact.In(eng.Tuning.Location).Format("2006-01-02"), f.DaysSinceContact(now, eng.Tuning))
	if f.Phone != "" {
		fmt.Printf("  phone: %s\n", f.Phone)
	}
	if f.Notes != "" {
		fmt.Printf("  notes: %s\n", f.Notes)
	}
	if len(f.Categories) > 0 {
		var cats []string
		for _, c := range f.Categories {
			cats = append(cats, c.Name)
		}
		fmt.Printf("  categories: %s\n", strings.Join(cats, ", "))
	}
	if age, ok := f.Age(now); ok {
		d, _ := f.DaysUntilBirthday(now, eng.Tuning)
		switch {
		case d == 0:
			fmt.Printf("  birthday: today! 🎂 (turning %d)\n", age+1)
		case d <= 7:
			fmt.Printf("  birthday: in %d days (age %d)\n", d, age)
		default:
			fmt.Printf("  birthday: %s (age %d)\n", f.Birthday.Format("Jan 2"), age)
		}
	}
	if f.IsGhost(now, eng.Tuning) {
		fmt.Println("  👻 this friendship has become a ghost — log any interaction to resurrect it")
	}

	history := f.SortedInteractions()
	if len(history) > 0 {
		fmt.Println("\n  history:")
		for _, in := range history {
			note := ""
			if in.Note != "" {
				note = " — " + in.Note
			}
			fmt.Printf("    %s  %s%s\n", in.Date.In(eng.Tuning.Location).Format("2006-01-02"), in.Type.Label(), note)
		}
	}
	return nil
}

// --- remove command ---

var removeYes bool

var removeCmd = &cobra.Command{
	Use:   "remove FRIEND",
	Short: "Remove a friend and their interaction history",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := resolveFriend(eng, args[0])
	if err != nil {
		return err
	}

	if !removeYes {
		fmt.Printf("Remove %s and %d logged interactions? [y/N] ", f.Name, len(f.Interactions))
		var answer string
		fmt.Scanln(&answer)
		if !strings.HasPrefix(strings.ToLower(answer), "y") {
			fmt.Println("aborted")
			return nil
		}
	}

	if err := db.DeleteFriend(f.ID); err != nil {
		return err
	}
	fmt.Printf("Removed %s\n", f.Name)
	return nil
}

// --- decay command ---

var decayCmd = &cobra.Command{
	Use:   "decay",
	Short: "Run a decay pass now",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, db, err := openEngine()
		if err != nil {
			return err
		}
		defer db.Close()

		updated, err := eng.DecayAll()
		if err != nil {
			return err
		}
		fmt.Printf("decay: updated %d friends\n", updated)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addLastContact, "last-contact", "", "Last contact date (YYYY-MM-DD)")
	addCmd.Flags().IntVar(&addDaysAgo, "days-ago", 0, "Days since last contact")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "Free-form notes")
	addCmd.Flags().StringVar(&addPhone, "phone", "", "Phone number")
	addCmd.Flags().StringVar(&addBirthday, "birthday", "", "Birthday (YYYY-MM-DD)")

	logCmd.Flags().StringVarP(&logNote, "note", "m", "", "Note about the interaction")
	logCmd.Flags().StringVar(&logDate, "date", "", "Backdate the interaction (YYYY-MM-DD)")

	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "Skip confirmation")
}
