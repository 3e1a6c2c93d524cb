package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Battlescape/internal/battlescape"
	"github.com/Garsondee/Battlescape/internal/config"
	"github.com/Garsondee/Battlescape/internal/logging"
	"github.com/Garsondee/Battlescape/internal/rules"
)

type runStats struct {
	runIndex int
	seed     int64

	ticks   int
	turns   int
	outcome battlescape.OutcomeReport
	digest  string

	firstContactTick int
	firstShotTick    int
	firstDeathTick   int
	firstPanicTick   int

	shots       int
	hits        int
	reactions   int
	explosions  int
	deaths      int
	unconscious int
	panics      int
	discarded   int
	moves       int
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var scenario string
	var cfgPath string
	var clip bool
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 0, "tick limit per run (0 uses sim.maxTicks)")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenario, "scenario", "skirmish", "builtin scenario name, or a scenario YAML file")
	flag.StringVar(&cfgPath, "config", "", "optional YAML config file")
	flag.BoolVar(&clip, "clip", false, "copy the report to the clipboard")
	flag.BoolVar(&verbose, "v", false, "print every run's event log")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		os.Exit(2)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	log := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	rs := rules.Default()
	if cfg.Rules.File != "" {
		if rs, err = rules.LoadFile(cfg.Rules.File); err != nil {
			log.Fatal().Err(err).Msg("loading rules")
		}
	}
	sc, err := battlescape.ResolveScenario(scenario)
	if err != nil {
		log.Fatal().Err(err).Msg("loading scenario")
	}

	settings := cfg.Settings()
	settings.AutoPlayer = true
	if ticks > 0 {
		settings.MaxTicks = ticks
	}

	var out strings.Builder
	fmt.Fprintf(&out, "=== Headless Battle Report ===\n")
	fmt.Fprintf(&out, "scenario=%s runs=%d max_ticks=%d seed_base=%d seed_step=%d\n\n", sc.Name, runs, settings.MaxTicks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		g, err := newRun(sc, rs, settings, seed, log)
		if err != nil {
			log.Fatal().Err(err).Int64("seed", seed).Msg("building battle")
		}
		g.Run(settings.MaxTicks + 1)
		stats := collect(i+1, seed, g)
		all = append(all, stats)
		printRun(&out, stats)
		if verbose {
			out.WriteString(g.Events().Format())
			out.WriteString("\n")
		}
	}
	printAggregate(&out, all)

	fmt.Print(out.String())
	if clip {
		if err := clipboard.WriteAll(out.String()); err != nil {
			log.Warn().Err(err).Msg("copying report to clipboard")
		}
	}
}

func newRun(sc battlescape.Scenario, rs *rules.Ruleset, s battlescape.Settings, seed int64, log zerolog.Logger) (*battlescape.Game, error) {
	opts := append(sc.Options(),
		battlescape.WithSettings(s),
		battlescape.WithRules(rs),
		battlescape.WithLogger(log.With().Int64("seed", seed).Logger()),
		battlescape.WithSeed(seed),
	)
	return battlescape.New(opts...)
}

func collect(runIndex int, seed int64, g *battlescape.Game) runStats {
	ev := g.Events()
	rs := runStats{
		runIndex:         runIndex,
		seed:             seed,
		ticks:            g.Ticks(),
		turns:            g.Turn(),
		outcome:          g.Outcome(),
		digest:           ev.Digest(),
		firstContactTick: firstTick(ev.Entries(), "walk_stopped", "hostile spotted"),
		firstShotTick:    firstTick(ev.Entries(), "shot_fired", ""),
		firstDeathTick:   firstTick(ev.Entries(), "unit_died", ""),
		firstPanicTick:   firstTick(ev.Entries(), "unit_panicked", ""),
		shots:            ev.Count("shot_fired"),
		reactions:        ev.Count("reaction_fire"),
		explosions:       ev.Count("explosion"),
		deaths:           ev.Count("unit_died"),
		unconscious:      ev.Count("unit_unconscious"),
		panics:           ev.Count("unit_panicked"),
		discarded:        ev.Count("action_discarded"),
		moves:            ev.Count("unit_moved"),
	}
	for _, e := range ev.Filter("shot_fired") {
		if shot, ok := e.Event.(battlescape.ShotFired); ok && shot.Hit {
			rs.hits++
		}
	}
	return rs
}

func firstTick(entries []battlescape.Entry, name, contains string) int {
	for _, e := range entries {
		if e.Event.Name() != name {
			continue
		}
		if contains == "" || strings.Contains(e.Event.Detail(), contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(out *strings.Builder, rs runStats) {
	fmt.Fprintf(out, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Fprintf(out, "outcome: %s\n", rs.outcome)
	fmt.Fprintf(out, "length: ticks=%d turns=%d digest=%s\n", rs.ticks, rs.turns, rs.digest)
	fmt.Fprintf(out, "phase_markers: contact=%d first_shot=%d first_death=%d first_panic=%d\n",
		rs.firstContactTick, rs.firstShotTick, rs.firstDeathTick, rs.firstPanicTick)
	fmt.Fprintf(out, "event_totals: moves=%d shots=%d hits=%d reactions=%d explosions=%d deaths=%d unconscious=%d panics=%d discarded=%d\n",
		rs.moves, rs.shots, rs.hits, rs.reactions, rs.explosions, rs.deaths, rs.unconscious, rs.panics, rs.discarded)
	if stalemate, reason := detectStalemate(rs); stalemate {
		fmt.Fprintf(out, "stalemate: %s\n", reason)
	}
	fmt.Fprintln(out)
}

// detectStalemate flags runs that hit the tick limit with both sides mostly
// intact and little shooting.
func detectStalemate(rs runStats) (bool, string) {
	o := rs.outcome
	if o.Outcome != battlescape.OutcomeInconclusive {
		return false, "decided"
	}
	if o.PlayerTotal == 0 || o.HostileTotal == 0 {
		return false, "one_sided"
	}
	playerRate := float64(o.PlayerSurvivors) / float64(o.PlayerTotal)
	hostileRate := float64(o.HostileSurvivors) / float64(o.HostileTotal)
	var reasons []string
	if playerRate >= 0.5 && hostileRate >= 0.5 {
		reasons = append(reasons, fmt.Sprintf("high_mutual_survival(player=%.0f%%,hostile=%.0f%%)", playerRate*100, hostileRate*100))
	}
	if rs.turns > 0 && float64(rs.shots)/float64(rs.turns) < 1 {
		reasons = append(reasons, "low_fire_rate")
	}
	if len(reasons) == 0 {
		return false, "attrition"
	}
	return true, strings.Join(reasons, ",")
}

func printAggregate(out *strings.Builder, all []runStats) {
	outcomes := map[string]int{}
	totalShots, totalHits, totalReactions, totalDeaths, totalPanics := 0, 0, 0, 0, 0
	ticks := make([]int, 0, len(all))
	deathTicks := make([]int, 0, len(all))
	contactTicks := make([]int, 0, len(all))
	stalemates := 0

	for _, rs := range all {
		outcomes[rs.outcome.Outcome.String()]++
		totalShots += rs.shots
		totalHits += rs.hits
		totalReactions += rs.reactions
		totalDeaths += rs.deaths
		totalPanics += rs.panics
		ticks = append(ticks, rs.ticks)
		if rs.firstDeathTick >= 0 {
			deathTicks = append(deathTicks, rs.firstDeathTick)
		}
		if rs.firstContactTick >= 0 {
			contactTicks = append(contactTicks, rs.firstContactTick)
		}
		if s, _ := detectStalemate(rs); s {
			stalemates++
		}
	}

	fmt.Fprintln(out, "=== Aggregate ===")
	fmt.Fprintf(out, "runs=%d stalemates=%d\n", len(all), stalemates)
	fmt.Fprintf(out, "outcomes: %s\n", joinCounts(outcomes))
	fmt.Fprintf(out, "avg_per_run: shots=%.1f hits=%.1f reactions=%.1f deaths=%.1f panics=%.1f\n",
		avg(totalShots, len(all)), avg(totalHits, len(all)), avg(totalReactions, len(all)), avg(totalDeaths, len(all)), avg(totalPanics, len(all)))
	hitRate := 0.0
	if totalShots > 0 {
		hitRate = float64(totalHits) / float64(totalShots) * 100
	}
	fmt.Fprintf(out, "hit_rate=%.0f%%\n", hitRate)
	fmt.Fprintf(out, "avg_ticks: battle=%s first_contact=%s first_death=%s\n",
		avgTickString(ticks), avgTickString(contactTicks), avgTickString(deathTicks))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinCounts(m map[string]int) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, " ")
}
