/*
Copyright 2026 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/mbenders/weekly-listens/internal/analysis"
)

// renderReport formats a report for the terminal.
func renderReport(r *analysis.WeeklyReport) string {
	out := new(bytes.Buffer)
	fmt.Fprintf(out, "Weekly report for %s, week ending %s\n\n", r.User, r.WeekEnding.Format("2006-01-02"))

	if r.NoData {
		fmt.Fprintln(out, "No listening data for this week.")
		return out.String()
	}

	for _, insight := range r.Insights {
		fmt.Fprintf(out, "- %s\n", insight)
	}
	if len(r.Insights) > 0 {
		fmt.Fprintln(out)
	}

	if len(r.Patterns.PeakHours) > 0 {
		fmt.Fprintf(out, "Peak listening hours: %s\n\n", formatHours(r.Patterns.PeakHours))
	}

	if len(r.Patterns.Daily) > 0 {
		rows := [][]string{{"Day", "Plays"}}
		for _, d := range r.Patterns.Daily {
			rows = append(rows, []string{d.Day, strconv.Itoa(d.Count)})
		}
		fmt.Fprintln(out, renderTable(rows))
	}

	if len(r.Moods.Distribution) > 0 {
		rows := [][]string{{"Mood", "Tracks"}}
		for _, mood := range sortedMoods(r.Moods.Distribution) {
			rows = append(rows, []string{mood, strconv.Itoa(r.Moods.Distribution[mood])})
		}
		fmt.Fprintln(out, renderTable(rows))
	}

	if len(r.Recommendations) > 0 {
		rows := [][]string{{"Recommended Track", "Artist"}}
		for _, t := range r.Recommendations {
			rows = append(rows, []string{t.Name, t.Artist})
		}
		fmt.Fprintln(out, renderTable(rows))
	}

	return out.String()
}

func renderTable(rows [][]string) string {
	out := new(bytes.Buffer)
	table := tablewriter.NewWriter(out)
	table.Header(rows[0])
	for _, row := range rows[1:] {
		if err := table.Append(row); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Sprintf("Error rendering table: %v", err)
	}
	return out.String()
}

// reportHTML formats a report as an email subject and HTML body.
func reportHTML(r *analysis.WeeklyReport) (subject string, body string) {
	subject = fmt.Sprintf("Weekly listening report for %s (week ending %s)",
		r.User, r.WeekEnding.Format("2006-01-02"))

	out := `
<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
</style>
  </head>
  <body>
`
	out += fmt.Sprintf("<h2>Weekly report for %s, week ending %s</h2>\n",
		r.User, r.WeekEnding.Format("2006-01-02"))

	if r.NoData {
		out += "<div>No listening data for this week.</div>\n</body>\n</html>\n"
		return subject, out
	}

	if len(r.Insights) > 0 {
		out += "<ul>\n"
		for _, insight := range r.Insights {
			out += fmt.Sprintf("<li>%s</li>\n", insight)
		}
		out += "</ul>\n"
	}

	if len(r.Patterns.PeakHours) > 0 {
		out += fmt.Sprintf("<div>Peak listening hours: %s</div>\n", formatHours(r.Patterns.PeakHours))
	}

	if len(r.Patterns.Daily) > 0 {
		rows := [][]string{{"Day", "Plays"}}
		for _, d := range r.Patterns.Daily {
			rows = append(rows, []string{d.Day, strconv.Itoa(d.Count)})
		}
		out += htmlTable(rows)
	}

	if len(r.Moods.Distribution) > 0 {
		rows := [][]string{{"Mood", "Tracks"}}
		for _, mood := range sortedMoods(r.Moods.Distribution) {
			rows = append(rows, []string{mood, strconv.Itoa(r.Moods.Distribution[mood])})
		}
		out += htmlTable(rows)
	}

	if len(r.Recommendations) > 0 {
		rows := [][]string{{"Recommended Track", "Artist"}}
		for _, t := range r.Recommendations {
			rows = append(rows, []string{t.Name, t.Artist})
		}
		out += htmlTable(rows)
	}

	out += "</body>\n</html>\n"
	return subject, out
}

func htmlTable(rows [][]string) string {
	out := "<table>\n<thead>\n<tr>\n"
	for _, header := range rows[0] {
		out += fmt.Sprintf("<th>%s</th>", header)
	}
	out += "\n</tr>\n</thead>\n<tbody>\n"
	for _, row := range rows[1:] {
		out += "<tr>\n"
		for _, column := range row {
			out += fmt.Sprintf("<td>%s</td>\n", column)
		}
		out += "</tr>\n"
	}
	out += "</tbody>\n</table>\n"
	return out
}

func formatHours(hours []int) string {
	var parts []string
	for _, h := range hours {
		parts = append(parts, fmt.Sprintf("%02d:00", h))
	}
	return strings.Join(parts, ", ")
}

func sortedMoods(distribution map[string]int) []string {
	moods := make([]string, 0, len(distribution))
	for mood := range distribution {
		moods = append(moods, mood)
	}
	sort.Strings(moods)
	return moods
}
