package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/npillmayer/varfont/otcff"
	"github.com/npillmayer/varfont/otinstance"
	"github.com/npillmayer/varfont/otvar"
	"github.com/pterm/pterm"
)

func tablesOp(intp *Intp, op *Op) (error, bool) {
	tags := make([]string, 0, len(intp.font.Tables))
	for tag := range intp.font.Tables {
		tags = append(tags, tag.String())
	}
	sort.Strings(tags)
	data := [][]string{
		{"Table", "Size"},
	}
	for _, tag := range tags {
		data = append(data, []string{tag, strconv.Itoa(len(intp.font.Tables[otvar.T(tag)]))})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func axesOp(intp *Intp, op *Op) (error, bool) {
	axes := intp.font.Axes()
	if len(axes) == 0 {
		pterm.Info.Println("font has no variation axes")
		return nil, false
	}
	data := [][]string{
		{"Tag", "Min", "Default", "Max", "Hidden"},
	}
	for _, a := range axes {
		data = append(data, []string{
			a.Tag.String(),
			fmt.Sprintf("%g", a.Minimum),
			fmt.Sprintf("%g", a.Default),
			fmt.Sprintf("%g", a.Maximum),
			fmt.Sprintf("%v", a.Flags&otvar.AxisFlagHidden != 0),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func instancesOp(intp *Intp, op *Op) (error, bool) {
	instances := intp.font.NamedInstances()
	if len(instances) == 0 {
		pterm.Info.Println("font has no named instances")
		return nil, false
	}
	data := [][]string{
		{"Index", "Name", "Coordinates"},
	}
	for _, inst := range instances {
		data = append(data, []string{
			strconv.Itoa(inst.Index),
			intp.font.InstanceName(inst),
			fmt.Sprintf("%v", inst.Coordinates),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func printCoords(user otvar.UserCoords, normalized otvar.NormalizedCoords) {
	data := [][]string{
		{"Axis", "User", "Normalized"},
	}
	for tag, value := range user {
		data = append(data, []string{
			tag.String(),
			fmt.Sprintf("%g", value),
			fmt.Sprintf("%g", normalized[tag]),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printResult(result *otinstance.InstanceResult) {
	data := [][]string{
		{"Table", "Size"},
	}
	tags := make([]string, 0, len(result.Tables))
	for tag := range result.Tables {
		tags = append(tags, tag.String())
	}
	sort.Strings(tags)
	for _, tag := range tags {
		data = append(data, []string{tag, strconv.Itoa(len(result.Tables[otvar.T(tag)]))})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	for _, w := range result.Warnings {
		pterm.Warning.Println(w)
	}
	pterm.Info.Printf("instance at %v generated\n", result.Coords)
}

func printBatch(locations []otvar.UserCoords, results []otinstance.BatchResult) {
	failed := 0
	for i, r := range results {
		if r.Err != nil {
			failed++
			pterm.Error.Printf("instance %d at %v: %v\n", i, locations[i], r.Err)
		}
	}
	pterm.Info.Printf("batch done: %d instances, %d failed\n", len(results), failed)
}

func printReport(report *otvar.ValidationReport) {
	for _, issue := range report.Errors {
		pterm.Error.Printf("%s/%s: %s\n", issue.Table, issue.Section, issue.Issue)
	}
	for _, issue := range report.Warnings {
		pterm.Warning.Printf("%s/%s: %s\n", issue.Table, issue.Section, issue.Issue)
	}
	if report.Valid {
		pterm.Info.Println("variation data is valid")
	} else {
		pterm.Error.Println("variation data is NOT valid")
	}
}

func printOptimizerReport(report *otcff.OptimizerReport) {
	data := [][]string{
		{"Metric", "Before", "After"},
		{"Regions", strconv.Itoa(report.RegionsBefore), strconv.Itoa(report.RegionsAfter)},
		{"Est. bytes", strconv.Itoa(report.EstimatedSizeFrom), strconv.Itoa(report.EstimatedSizeTo)},
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Info.Printf("%d blend subroutines extracted\n", report.SubroutinesAdded)
}
