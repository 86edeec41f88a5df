package output

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/blazetool/targetmap/pkg/analysis"
	"github.com/blazetool/targetmap/pkg/cycles"
	"github.com/blazetool/targetmap/pkg/model"
)

// PrintResolveReport prints the targets found for a source file, nearest first
func PrintResolveReport(sourcePath string, filter model.RuleType, results []model.TargetInfo) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	bold.Printf("Targets for %s", sourcePath)
	if filter != model.RuleTypeAny {
		fmt.Printf(" (rule type: %s)", filter)
	}
	fmt.Println()

	if len(results) == 0 {
		yellow.Println("  no matching targets")
		return
	}

	for _, info := range results {
		green.Printf("  %s", info.Label)
		cyan.Printf("  [%s]\n", info.Kind)
	}
}

// PrintUnownedReport prints a source ownership report with colors
func PrintUnownedReport(workspace string, totalFiles int, unowned []analysis.UnownedFile) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	ownedFiles := totalFiles - len(unowned)

	// Header
	bold.Println("Source Ownership Report")
	bold.Println("=======================")
	fmt.Printf("Workspace: %s\n", workspace)
	fmt.Printf("Scanned: %d source files\n", totalFiles)

	if len(unowned) == 0 {
		green.Printf("Owned: %d files\n", ownedFiles)
		green.Printf("Unowned: 0 files\n")
	} else {
		fmt.Printf("Owned: %d files\n", ownedFiles)
		yellow.Printf("Unowned: %d file(s)\n", len(unowned))
	}
	fmt.Println()

	if len(unowned) > 0 {
		red.Println("UNOWNED FILES:")
		for _, uf := range unowned {
			yellow.Printf("  %s\n", uf.Path)
			cyan.Printf("    Package: %s\n", uf.Package)
			fmt.Printf("    Suggestion: Add to a BUILD file or remove if unused\n")
			fmt.Println()
		}
	}

	// Summary colored by ownership percentage
	percentage := 100.0
	if totalFiles > 0 {
		percentage = float64(ownedFiles) / float64(totalFiles) * 100.0
	}

	summaryColor := green
	if percentage < 100.0 {
		summaryColor = yellow
	}
	if percentage < 80.0 {
		summaryColor = red
	}

	summaryColor.Printf("Summary: %.0f%% owned (%d/%d files)\n", percentage, ownedFiles, totalFiles)

	if percentage == 100.0 {
		green.Println("✓ All source files are owned by targets!")
	}
}

// PrintCycleReport prints detected dependency cycles
func PrintCycleReport(found []cycles.Cycle) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	bold.Println("Dependency Cycle Report")
	bold.Println("=======================")

	if len(found) == 0 {
		green.Println("✓ No dependency cycles detected")
		return
	}

	red.Printf("Found %d cycle(s):\n", len(found))
	for i, cycle := range found {
		fmt.Printf("  Cycle %d:\n", i+1)
		for _, label := range cycle.Targets {
			red.Printf("    %s\n", label)
		}
	}
}
