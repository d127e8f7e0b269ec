package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clinsight/cdsengine/internal/catalog"
	"github.com/clinsight/cdsengine/internal/ruleio"
)

var validateCmd = &cobra.Command{
	Use:   "validate <rules-dir>",
	Short: "Validate rule files without starting the service",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	rules, fileErrs, err := ruleio.LoadDir(args[0])
	if err != nil {
		return err
	}

	for _, fe := range fileErrs {
		fmt.Printf("file error: %v\n", fe)
	}

	c, verrs := catalog.FromRules(rules)
	for _, ve := range verrs {
		fmt.Printf("validation error: %v\n", ve)
	}

	idx, err := c.BuildIndex()
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	fmt.Printf("%d rules valid, %d rejected, %d files unreadable, %d index tokens\n",
		c.Len(), len(verrs), len(fileErrs), idx.Len())

	if len(fileErrs) > 0 || len(verrs) > 0 {
		return fmt.Errorf("validation found problems")
	}
	return nil
}
