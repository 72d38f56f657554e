package report

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
)

var gradeOrder = []string{"A", "B", "C", "D", "F"}

// Write prints the report: per-run rows when the config is verbose, then
// the aggregate, per-target and grade tables and the topN throws.
func Write(w io.Writer, rep *Report, topN int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	cfg, st := rep.Config, rep.Stats

	mode := "local"
	if cfg.BaseURL != "" {
		mode = cfg.BaseURL
	}
	fmt.Fprintf(tw, "formation %s\tcoverage %s\tconcept %s\truns %d\tmode %s\n",
		orDefault(cfg.Formation), orDefault(cfg.Coverage), orDefault(cfg.Concept), cfg.Runs, mode)

	if cfg.Verbose {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "SEED\tTARGET\tROUTE\tREAD\tRELEASE T\tOPEN@REL\tOPEN@CATCH\tP(CATCH)\tCONTEST\tRESULT\tSPOT\tGRADE\tSCORE")
		for i := range rep.Runs {
			r := &rep.Runs[i]
			if r.Err != "" {
				fmt.Fprintf(tw, "%d\t-\t-\t-\t-\t-\t-\t-\t-\terror: %s\t-\t-\t-\n", r.Seed, r.Err)
				continue
			}
			read := "open"
			if !r.Opened {
				read = "checkdown"
			}
			result := "incomplete"
			if r.Caught {
				result = "complete"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t%s\t%s\t%s\t%.1f\n",
				r.Seed, r.Target, r.Route, read, r.ReleaseT, r.ReleaseOpenness, r.CatchOpenness,
				r.Probability, r.Contest, result, r.Spot, r.Grade, r.Score)
		}
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "RUNS\tFAILED\tCOMPLETE\tRATE\tCHECKDOWNS\tOPEN@REL\tOPEN@CATCH\tP(CATCH)\tHOLD MS\tSCORE")
	fmt.Fprintf(tw, "%d\t%d\t%d\t%.1f%%\t%d\t%.2f\t%.2f\t%.2f\t%.0f\t%.1f\n",
		st.Runs, st.Failed, st.Completions, st.CompletionRate*100, st.Checkdowns,
		st.ReleaseOpenness, st.CatchOpenness, st.Probability, st.HoldMs, st.Score)

	if len(st.Targets) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "TARGET\tTHROWS\tCOMPLETE\tRATE\tOPEN@REL")
		targets := make([]string, 0, len(st.Targets))
		for t := range st.Targets {
			targets = append(targets, t)
		}
		slices.Sort(targets)
		for _, t := range targets {
			ts := st.Targets[t]
			fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f%%\t%.2f\n",
				t, ts.Throws, ts.Completions, float64(ts.Completions)/float64(ts.Throws)*100, ts.ReleaseOpenness)
		}
	}

	if len(st.Grades) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "A\tB\tC\tD\tF")
		for i, g := range gradeOrder {
			sep := "\t"
			if i == len(gradeOrder)-1 {
				sep = "\n"
			}
			fmt.Fprintf(tw, "%d%s", st.Grades[g], sep)
		}
	}

	if top := Rank(rep.Runs); topN > 0 && len(top) > 0 {
		if len(top) > topN {
			top = top[:topN]
		}
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "RANK\tSEED\tTARGET\tRESULT\tGRADE\tSCORE")
		for _, e := range top {
			fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%.1f\n", e.Rank, e.Seed, e.Target, e.Outcome, e.Grade, e.Score)
		}
	}

	return tw.Flush()
}

func orDefault(s string) string {
	if s == "" {
		return "default"
	}
	return s
}
