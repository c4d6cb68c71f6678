package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

const levelGuide = `LEVELS:
- Cyclomatic: <=5 low, <=10 medium, <=20 high, above that critical
- Nesting depth: <=2 low, <=4 medium, <=6 high, above that critical
- Maintainability index (0-100, higher is better): >=80 low, >=60 medium, >=40 high, below critical
- risk_score (0-100) blends cyclomatic, cognitive, nesting and maintainability; rank by it`

func describeAnalyzeSource() string {
	return `Scores a single legacy artifact (Perl script, TIBCO BusinessWorks process XML, Pentaho Kettle transformation or job) passed inline.

USE WHEN:
- The artifact text is already in the conversation
- Checking whether a proposed rewrite of a file is simpler than the original
- Triaging a snippet before reading it in detail

INTERPRETING RESULTS:
- complexity_level follows cyclomatic complexity; the overall level is the worst dimension
- suggestions are deterministic review hints keyed to the levels
` + levelGuide + `

METRICS RETURNED:
- cyclomatic_complexity, cognitive_complexity, nesting_depth
- halstead_volume, halstead_difficulty, maintainability_index
- line counts (total, code, comment, blank), fingerprint, levels, risk_score`
}

func describeAnalyzePaths() string {
	return `Discovers and scores every Perl, TIBCO BW and Pentaho Kettle artifact under the given paths.

USE WHEN:
- Deciding which legacy files to review or migrate first
- Getting a portfolio overview broken down by technology
- Finding the few files that carry most of the structural risk

INTERPRETING RESULTS:
- files are sorted by risk_score, riskiest first
- summary gives mean, standard deviation, P50 and P90 per metric plus counts per level
- skipped lists files that were unreadable or above the size cap
` + levelGuide + `

METRICS RETURNED:
- Report: id, generated_at, summary, per-technology groups, files, skipped`
}

func describeCompareReports() string {
	return `Compares two saved relic reports (JSON files written by "relic analyze --save").

USE WHEN:
- Checking whether a migration or cleanup reduced risk
- Reviewing which files regressed between two snapshots
- Summarizing progress for a status update

INTERPRETING RESULTS:
- status per file: added, removed, renamed (same content, new path), changed, unchanged
- delta fields are head minus base; a negative maintainability delta is a regression
- improved/regressed count files whose risk_score went down/up

METRICS RETURNED:
- files with per-metric deltas and old/new levels
- summary delta of means and level counts
- added, removed, renamed, improved, regressed counts`
}
