package cli

import (
	"fmt"
	"strings"

	"github.com/ApexForge13/policyscan/internal/kb"
	"github.com/spf13/cobra"
)

var rulesCarrier string

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the built-in knowledge base",
	Long: `List the reference tables that guide extraction and enrichment:
- Landmine rules (provisions known to reduce supplement value)
- Favorable provisions (provisions that support recovery)
- Baseline exclusions per policy form family
- Known carrier endorsement forms

Example:
  policyscan rules
  policyscan rules --carrier "State Farm"`,
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.Flags().StringVar(&rulesCarrier, "carrier", "", "only show endorsement forms for this carrier")
}

func runRules(cmd *cobra.Command, args []string) error {
	knowledge, err := kb.Load()
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	if rulesCarrier != "" {
		forms := knowledge.FormsForCarrier(rulesCarrier)
		if len(forms) == 0 {
			fmt.Printf("No known endorsement forms for carrier %q\n", rulesCarrier)
			return nil
		}
		fmt.Printf("Endorsement forms for %q:\n\n", rulesCarrier)
		for _, form := range forms {
			fmt.Printf("  %-12s %s (%s)\n", form.FormNumber, form.Name, form.Severity)
			fmt.Printf("               %s\n", form.Effect)
			if len(form.AffectedSections) > 0 {
				fmt.Printf("               affects: %s\n", strings.Join(form.AffectedSections, ", "))
			}
		}
		return nil
	}

	fmt.Printf("Landmines (%d):\n", len(knowledge.Landmines))
	for _, rule := range knowledge.Landmines {
		fmt.Printf("  %-32s %-8s %s\n", rule.ID, rule.Severity, rule.Name)
	}
	fmt.Println()

	fmt.Printf("Favorable provisions (%d):\n", len(knowledge.FavorableProvisions))
	for _, rule := range knowledge.FavorableProvisions {
		fmt.Printf("  %-32s %s\n", rule.ID, rule.Name)
	}
	fmt.Println()

	fmt.Printf("Baseline exclusions (%d):\n", len(knowledge.BaselineExclusions))
	for _, excl := range knowledge.BaselineExclusions {
		fmt.Printf("  %-8s %s\n", excl.FormType, excl.Name)
	}
	fmt.Println()

	fmt.Printf("Carrier endorsement forms (%d):\n", len(knowledge.CarrierForms))
	for _, form := range knowledge.CarrierForms {
		fmt.Printf("  %-18s %-12s %s\n", form.Carrier, form.FormNumber, form.Name)
	}

	return nil
}
