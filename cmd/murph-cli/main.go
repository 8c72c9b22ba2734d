// Command murph-cli performs and logs a Murph workout from the terminal.
// The in-progress session is persisted locally after every action, so a
// killed terminal resumes exactly where it left off, stopwatch included.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/claude/murph/internal/client"
	"github.com/claude/murph/internal/models"
	"github.com/claude/murph/internal/session"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "murph server URL (e.g. https://murph.tail1234.ts.net)")
	apiKey := flag.String("api-key", "", "API key for submission")
	stateDir := flag.String("state-dir", "", "state directory (default ~/.murph)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("murph-cli", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: murph-cli -server <URL> [-api-key KEY] [-state-dir DIR]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	dir := *stateDir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		dir = filepath.Join(homeDir, ".murph")
	}

	store, err := session.OpenStateDB(dir, log)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	api := client.New(strings.TrimRight(*serverURL, "/"), *apiKey)
	sess := session.New(store, api, 1, log)

	stage, err := sess.Resume()
	if err != nil {
		log.Error("failed to resume session", "error", err)
		os.Exit(1)
	}
	if stage != session.StageNotStarted {
		fmt.Printf("Resumed session at stage %s, elapsed %s\n", stage, session.FormatElapsed(sess.Elapsed()))
	}

	run(sess, api)
}

func run(sess *session.Session, api *client.Client) {
	fmt.Println("murph-cli — type 'help' for commands")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "help":
			printHelp()
		case "start":
			report(sess.Start(), "Session started. Run one mile!")
		case "run1":
			d, err := parseDistance(args)
			if err != nil {
				fmt.Println(err)
				continue
			}
			report(sess.FinishFirstRun(d), "First run done. Time for pullups, pushups, and squats.")
		case "pullups", "pushups", "squats":
			n, err := parseCount(args)
			if err != nil {
				fmt.Println(err)
				continue
			}
			if err := sess.AddReps(models.Exercise(cmd), n); err != nil {
				fmt.Println(err)
				continue
			}
			d := sess.Draft()
			fmt.Printf("pullups %d/%d  pushups %d/%d  squats %d/%d\n",
				d.Pullups, models.MaxPullups, d.Pushups, models.MaxPushups, d.Squats, models.MaxSquats)
			if d.ExercisesCompleted() {
				fmt.Println("All reps done! 'done' to close the block.")
			}
		case "done":
			report(sess.CompleteExercises(), "Exercises closed. One more mile!")
		case "run2":
			d, err := parseDistance(args)
			if err != nil {
				fmt.Println(err)
				continue
			}
			finishAndSubmit(sess, d)
		case "submit":
			submit(sess)
		case "status":
			printStatus(sess)
		case "watch":
			watch(sess, scanner)
		case "history":
			printHistory(api)
		case "metrics":
			printMetrics(api)
		case "reset":
			report(sess.Reset(), "Session reset.")
		case "quit", "exit":
			return
		default:
			fmt.Printf("unknown command %q — type 'help'\n", cmd)
		}
	}
}

func printHelp() {
	fmt.Print(`  start              begin the workout
  run1 <miles>       finish the first run (0, 0.25, 0.5, 0.75, 1)
  pullups <n>        add pullup reps (also: pushups, squats)
  done               close the exercise block
  run2 <miles>       finish the second run and submit
  submit             retry submission of a completed session
  status             show stage, reps, and elapsed time
  watch              live stopwatch (enter to stop watching)
  history            show submitted sessions
  metrics            show aggregate metrics
  reset              discard the session
  quit               exit (session stays resumable)
`)
}

func parseDistance(args []string) (models.RunDistance, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected a distance in miles (0, 0.25, 0.5, 0.75, 1)")
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid distance %q", args[0])
	}
	d := models.RunDistance(v)
	if !d.Valid() {
		return 0, fmt.Errorf("distance must be one of 0, 0.25, 0.5, 0.75, 1")
	}
	return d, nil
}

func parseCount(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected a rep count")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid rep count %q", args[0])
	}
	return n, nil
}

func report(err error, ok string) {
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(ok)
}

// finishAndSubmit completes the session and submits it in the background
// so the prompt stays responsive. A failed submission can be retried with
// 'submit'; the persisted flag prevents duplicates.
func finishAndSubmit(sess *session.Session, d models.RunDistance) {
	row, err := sess.FinishSecondRun(d)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Workout complete: %s in %s\n", row.MurphType, session.FormatElapsed(row.Duration()))
	go submit(sess)
}

func submit(sess *session.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := sess.Submit(ctx); err != nil {
		fmt.Printf("submission failed (retry with 'submit'): %v\n", err)
		return
	}
	fmt.Println("Session saved.")
}

func printStatus(sess *session.Session) {
	d := sess.Draft()
	fmt.Printf("stage:    %s\n", sess.Stage())
	fmt.Printf("elapsed:  %s\n", session.FormatElapsed(sess.Elapsed()))
	fmt.Printf("reps:     pullups %d/%d, pushups %d/%d, squats %d/%d\n",
		d.Pullups, models.MaxPullups, d.Pushups, models.MaxPushups, d.Squats, models.MaxSquats)
	fmt.Printf("runs:     first %v mi, second %v mi\n", d.FirstRunDistance, d.SecondRunDistance)
	if sess.Stage() == session.StageCompleted {
		fmt.Printf("saved:    %v\n", sess.Submitted())
	}
}

// watch redraws the elapsed time a few times a second until the user
// presses enter. The ticker is cancelled on the way out; it must not
// outlive the watch.
func watch(sess *session.Session, scanner *bufio.Scanner) {
	if !sess.Stage().Running() {
		fmt.Println("no running session")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		sess.Tick(ctx, 100*time.Millisecond, func(elapsed time.Duration) {
			fmt.Printf("\r%s ", session.FormatElapsed(elapsed))
		})
	}()

	scanner.Scan()
	cancel()
	<-done
	fmt.Println()
}

func printHistory(api *client.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := api.History(ctx)
	if err != nil {
		fmt.Printf("history failed: %v\n", err)
		return
	}
	if len(rows) == 0 {
		fmt.Println("no sessions yet")
		return
	}
	for _, m := range rows {
		fmt.Printf("%s  %-13s  %s  %v+%v mi  %d/%d/%d\n",
			m.StartTime.Local().Format("2006-01-02 15:04"),
			m.MurphType,
			session.FormatElapsed(m.Duration()),
			m.FirstRunDistance, m.SecondRunDistance,
			m.Pullups, m.Pushups, m.Squats)
	}
}

func printMetrics(api *client.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	r, err := api.Metrics(ctx)
	if err != nil {
		fmt.Printf("metrics failed: %v\n", err)
		return
	}
	fmt.Printf("total distance:  %.2f mi\n", r.TotalDistance)
	fmt.Printf("total reps:      %d pullups, %d pushups, %d squats\n",
		r.TotalPullups, r.TotalPushups, r.TotalSquats)
	fmt.Printf("total murphs:    %.2f\n", r.TotalMurphs)
	if r.FastestMurph != nil {
		fmt.Printf("fastest murph:   %s\n", session.FormatElapsed(time.Duration(*r.FastestMurph)*time.Millisecond))
	}
	if r.AverageMurph != nil {
		fmt.Printf("average murph:   %s\n", session.FormatElapsed(time.Duration(*r.AverageMurph)*time.Millisecond))
	}
	fmt.Printf("longest streak:  %d day(s)\n", r.LongestStreak)
}
