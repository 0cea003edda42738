package main

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mrenaud/cadence/internal/catalog"
	"github.com/mrenaud/cadence/internal/config"
	"github.com/mrenaud/cadence/internal/eq"
	"github.com/mrenaud/cadence/internal/errmsg"
	"github.com/mrenaud/cadence/internal/mpris"
	"github.com/mrenaud/cadence/internal/notify"
	"github.com/mrenaud/cadence/internal/player"
	"github.com/mrenaud/cadence/internal/reorder"
	"github.com/mrenaud/cadence/internal/session"
	"github.com/mrenaud/cadence/internal/state"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, errmsg.Format(errmsg.OpInitialize, err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := state.Open()
	if err != nil {
		return err
	}
	defer store.Close()

	notifier, err := notify.New()
	if err != nil {
		notifier = nil
	}

	sess := session.New(cfg, store, player.New(), notifier)
	defer sess.Close()

	adapter, err := mpris.New(sess.Controller())
	if err == nil {
		defer adapter.Close()
	}

	fmt.Println("cadence - type 'help' for commands")
	repl(sess, cfg)
	return nil
}

func repl(sess *session.Session, cfg *config.Config) {
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
		if cmd == "quit" || cmd == "exit" {
			return
		}
		if msg := dispatch(sess, cfg, cmd, args); msg != "" {
			fmt.Println(msg)
		}
	}
}

//nolint:gocyclo // plain command table
func dispatch(sess *session.Session, cfg *config.Config, cmd string, args []string) string {
	c := sess.Controller()
	switch cmd {
	case "help":
		return helpText
	case "add":
		if len(args) == 0 && cfg.MusicFolder != "" {
			args = []string{cfg.MusicFolder}
		}
		if len(args) == 0 {
			return "usage: add <file|dir>..."
		}
		paths := collectPaths(args)
		added, err := sess.AddFiles(paths)
		if err != nil {
			return errmsg.Format(errmsg.OpTrackAdd, err)
		}
		return fmt.Sprintf("added %d tracks", len(added))
	case "ls":
		return formatTracks(sess.Tracks(), c.CurrentID())
	case "play":
		if len(args) == 0 {
			if err := c.TogglePlayPause(); err != nil {
				return errmsg.Format(errmsg.OpPlaybackStart, err)
			}
			return ""
		}
		i, err := strconv.Atoi(args[0])
		if err != nil {
			return "usage: play [index]"
		}
		tracks := sess.Tracks()
		if i < 1 || i > len(tracks) {
			return "index out of range"
		}
		if err := c.PlayID(tracks[i-1].ID); err != nil {
			return errmsg.Format(errmsg.OpPlaybackStart, err)
		}
		return ""
	case "pause":
		c.Pause()
		return ""
	case "resume":
		c.Resume()
		return ""
	case "stop":
		c.Stop()
		return ""
	case "next":
		if err := c.Next(); err != nil {
			return errmsg.Format(errmsg.OpPlaybackNext, err)
		}
		return ""
	case "prev":
		if err := c.Previous(); err != nil {
			return errmsg.Format(errmsg.OpPlaybackPrev, err)
		}
		return ""
	case "seek":
		if len(args) != 1 {
			return "usage: seek <seconds>"
		}
		secs, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return "usage: seek <seconds>"
		}
		c.SeekTo(time.Duration(secs * float64(time.Second)))
		return ""
	case "status":
		return formatStatus(sess)
	case "shuffle":
		if c.ToggleShuffle() {
			return "shuffle on"
		}
		return "shuffle off"
	case "repeat":
		return "repeat " + c.CycleRepeat().String()
	case "queue":
		if len(args) == 0 {
			return formatQueue(sess)
		}
		i, err := strconv.Atoi(args[0])
		tracks := sess.Tracks()
		if err != nil || i < 1 || i > len(tracks) {
			return "usage: queue [index]"
		}
		if !c.Enqueue(tracks[i-1].ID) {
			return "already queued"
		}
		return ""
	case "unqueue":
		if len(args) != 1 {
			return "usage: unqueue <index>"
		}
		i, err := strconv.Atoi(args[0])
		tracks := sess.Tracks()
		if err != nil || i < 1 || i > len(tracks) {
			return "usage: unqueue <index>"
		}
		c.RemoveQueued(tracks[i-1].ID)
		return ""
	case "clearqueue":
		c.ClearQueue()
		return ""
	case "rm":
		if len(args) != 1 {
			return "usage: rm <index>"
		}
		i, err := strconv.Atoi(args[0])
		tracks := sess.Tracks()
		if err != nil || i < 1 || i > len(tracks) {
			return "usage: rm <index>"
		}
		if err := sess.RemoveTrack(tracks[i-1].ID); err != nil {
			return errmsg.Format(errmsg.OpTrackRemove, err)
		}
		return ""
	case "move":
		return moveCommand(sess, args)
	case "playlists":
		names := sess.Playlists()
		active := sess.ActivePlaylist()
		var b strings.Builder
		for _, n := range names {
			marker := "  "
			if n == active {
				marker = "* "
			}
			fmt.Fprintf(&b, "%s%s\n", marker, n)
		}
		return strings.TrimRight(b.String(), "\n")
	case "use":
		if len(args) == 0 {
			return "usage: use <playlist>"
		}
		name := strings.Join(args, " ")
		if err := sess.SelectPlaylist(name); err != nil {
			return errmsg.FormatWith(errmsg.OpPlaylistSwitch, name, err)
		}
		return ""
	case "mklist":
		if len(args) == 0 {
			return "usage: mklist <name>"
		}
		name := strings.Join(args, " ")
		if err := sess.CreatePlaylist(name); err != nil {
			return errmsg.FormatWith(errmsg.OpPlaylistCreate, name, err)
		}
		return ""
	case "rmlist":
		if len(args) == 0 {
			return "usage: rmlist <name>"
		}
		name := strings.Join(args, " ")
		if err := sess.DeletePlaylist(name); err != nil {
			return errmsg.FormatWith(errmsg.OpPlaylistDelete, name, err)
		}
		return ""
	case "find":
		return findCommand(sess, args)
	case "genres":
		return strings.Join(sess.Genres(), "\n")
	case "years":
		return strings.Join(sess.Years(), "\n")
	case "recent":
		return formatTracks(sess.RecentTracks(), c.CurrentID())
	case "top":
		var b strings.Builder
		for _, pt := range sess.TopPlayed() {
			fmt.Fprintf(&b, "%3d  %s - %s\n", pt.Count, pt.Track.DisplayArtist(), pt.Track.DisplayTitle())
		}
		return strings.TrimRight(b.String(), "\n")
	case "vol":
		if len(args) == 0 {
			return fmt.Sprintf("volume %.0f%%", sess.Volume()*100)
		}
		pct, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return "usage: vol [0-100]"
		}
		sess.SetVolume(pct / 100)
		return ""
	case "mute":
		sess.ToggleMute()
		return ""
	case "eq":
		return eqCommand(sess, args)
	case "levels":
		bands := sess.Analyzer().Bands()
		var b strings.Builder
		for _, v := range bands {
			fmt.Fprintf(&b, "%5.2f ", v)
		}
		return strings.TrimRight(b.String(), " ")
	default:
		return "unknown command, type 'help'"
	}
}

func moveCommand(sess *session.Session, args []string) string {
	tracks := sess.Tracks()
	usage := "usage: move <index> <before|after> <index> | move <index> end"
	if len(args) < 2 {
		return usage
	}
	from, err := strconv.Atoi(args[0])
	if err != nil || from < 1 || from > len(tracks) {
		return usage
	}
	sess.BeginDrag(tracks[from-1].ID)
	switch {
	case args[1] == "end":
		sess.DragToEnd()
	case len(args) == 3:
		target, err := strconv.Atoi(args[2])
		if err != nil || target < 1 || target > len(tracks) {
			sess.CancelDrag()
			return usage
		}
		pos := reorder.Before
		if args[1] == "after" {
			pos = reorder.After
		} else if args[1] != "before" {
			sess.CancelDrag()
			return usage
		}
		sess.DragOver(tracks[target-1].ID, pos)
	default:
		sess.CancelDrag()
		return usage
	}
	if err := sess.Drop(); err != nil {
		return errmsg.Format(errmsg.OpTrackMove, err)
	}
	return ""
}

func findCommand(sess *session.Session, args []string) string {
	var term, genre, year string
	var words []string
	for _, a := range args {
		switch {
		case strings.HasPrefix(a, "genre="):
			genre = strings.TrimPrefix(a, "genre=")
		case strings.HasPrefix(a, "year="):
			year = strings.TrimPrefix(a, "year=")
		default:
			words = append(words, a)
		}
	}
	term = strings.Join(words, " ")
	return formatTracks(sess.FilteredTracks(term, genre, year), sess.Controller().CurrentID())
}

func eqCommand(sess *session.Session, args []string) string {
	e := sess.Equalizer()
	if len(args) == 0 {
		bands := e.Bands()
		var b strings.Builder
		fmt.Fprintf(&b, "preset %s, enabled %v, preamp %+.1f dB\n", e.Preset(), e.Enabled(), e.Preamp())
		for i, db := range bands {
			fmt.Fprintf(&b, "%6d Hz  %+.1f dB\n", eq.Frequencies[i], db)
		}
		return strings.TrimRight(b.String(), "\n")
	}
	switch args[0] {
	case "preset":
		if len(args) != 2 {
			return "usage: eq preset <name>"
		}
		if err := e.ApplyPreset(args[1]); err != nil {
			return errmsg.FormatWith(errmsg.OpEqPreset, args[1], err)
		}
		return ""
	case "band":
		if len(args) != 3 {
			return "usage: eq band <1-5> <dB>"
		}
		i, err1 := strconv.Atoi(args[1])
		db, err2 := strconv.ParseFloat(args[2], 64)
		if err1 != nil || err2 != nil || i < 1 || i > 5 {
			return "usage: eq band <1-5> <dB>"
		}
		e.SetBand(i-1, db)
		return ""
	case "preamp":
		if len(args) != 2 {
			return "usage: eq preamp <dB>"
		}
		db, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return "usage: eq preamp <dB>"
		}
		e.SetPreamp(db)
		return ""
	case "on":
		e.SetEnabled(true)
		return ""
	case "off":
		e.SetEnabled(false)
		return ""
	}
	return "usage: eq [preset <name> | band <1-5> <dB> | preamp <dB> | on | off]"
}

// collectPaths expands directories into their audio files, recursively.
func collectPaths(args []string) []string {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			out = append(out, arg)
			continue
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		_ = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if catalog.IsAudioFile(d.Name()) {
				out = append(out, path)
			}
			return nil
		})
	}
	return out
}

func formatTracks(tracks []*catalog.Track, currentID string) string {
	if len(tracks) == 0 {
		return "(empty)"
	}
	var b strings.Builder
	for i, t := range tracks {
		marker := "  "
		if t.ID == currentID {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%3d  %s - %s\n", marker, i+1, t.DisplayArtist(), t.DisplayTitle())
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatQueue(sess *session.Session) string {
	ids := sess.Controller().Queued()
	if len(ids) == 0 {
		return "(queue empty)"
	}
	byID := map[string]*catalog.Track{}
	for _, t := range sess.Tracks() {
		byID[t.ID] = t
	}
	var b strings.Builder
	for i, id := range ids {
		if t := byID[id]; t != nil {
			fmt.Fprintf(&b, "%3d  %s - %s\n", i+1, t.DisplayArtist(), t.DisplayTitle())
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatStatus(sess *session.Session) string {
	c := sess.Controller()
	track := c.CurrentTrack()
	if track == nil {
		return fmt.Sprintf("%s | %s", c.Status(), sess.ActivePlaylist())
	}
	return fmt.Sprintf("%s | %s - %s | %s / %s | shuffle=%v repeat=%s",
		c.Status(), track.DisplayArtist(), track.DisplayTitle(),
		c.Position().Round(time.Second), c.Duration().Round(time.Second),
		c.Shuffled(), c.Repeat())
}


const helpText = `playback: play [n] | pause | resume | stop | next | prev | seek <s> | status
playlist: add <path>... | ls | rm <n> | move <n> before|after <m> | move <n> end
lists:    playlists | use <name> | mklist <name> | rmlist <name>
queue:    queue [n] | unqueue <n> | clearqueue
modes:    shuffle | repeat
search:   find <term> [genre=..] [year=..] | genres | years
history:  recent | top
sound:    vol [0-100] | mute | eq ... | levels
other:    help | quit`
