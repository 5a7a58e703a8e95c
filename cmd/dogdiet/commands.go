package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/whiskerworthy/dogdiet/internal/breedadmin"
	"github.com/whiskerworthy/dogdiet/internal/config"
	"github.com/whiskerworthy/dogdiet/internal/form"
	"github.com/whiskerworthy/dogdiet/internal/questionnaire"
)

const (
	questionnaireFormID = "dogQuestionnaireForm"
	breedUpdateFormID   = "breedUpdateForm"
)

// loadHTMLForm reads the form with id from a saved page.
func loadHTMLForm(path, id string) (*form.Form, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening form page: %w", err)
	}
	defer f.Close()
	return form.ParseHTML(f, id)
}

// --- submit ---

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit the dog diet questionnaire",
	Long: `Submit the dog diet questionnaire and show the selected report.

Examples:
  dogdiet submit --breed "Labrador Retriever" --age 3 --status allergy --status overweight
  dogdiet submit --form ./questionnaire.html`,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetString("form")
		formID, _ := cmd.Flags().GetString("form-id")

		var f *form.Form
		if page != "" {
			if cmd.Flags().Changed("breed") || cmd.Flags().Changed("age") || cmd.Flags().Changed("status") {
				return fmt.Errorf("--form cannot be combined with --breed, --age or --status")
			}
			var err error
			if f, err = loadHTMLForm(page, formID); err != nil {
				return err
			}
		} else {
			breed, _ := cmd.Flags().GetString("breed")
			age, _ := cmd.Flags().GetString("age")
			statuses, _ := cmd.Flags().GetStringArray("status")

			f = form.New(
				form.Field{Name: questionnaire.FieldBreed, Value: breed},
				form.Field{Name: questionnaire.FieldAge, Value: age},
			)
			for _, s := range statuses {
				f.Add(questionnaire.FieldStatus, s)
			}
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		console.Step("Submitting questionnaire...")
		res, err := questionnaire.NewHandler(client, console, slog.Default()).Submit(cmd.Context(), f)
		if questionnaire.IsValidation(err) {
			return invalidInput(err)
		}
		if err != nil {
			return reported(err)
		}

		switch report := res.Report.(type) {
		case nil:
		case string:
			fmt.Fprintln(stdout, report)
		default:
			return printJSON(report)
		}
		return nil
	},
}

func init() {
	submitCmd.Flags().String("breed", "", "official AKC breed name")
	submitCmd.Flags().String("age", "", "dog's age in years")
	submitCmd.Flags().StringArray("status", nil, "diet-related status (repeatable)")
	submitCmd.Flags().String("form", "", "read the answers from a saved questionnaire page")
	submitCmd.Flags().String("form-id", questionnaireFormID, "id of the <form> element in --form")
}

// --- breed ---

var breedCmd = &cobra.Command{
	Use:   "breed",
	Short: "Look up and update breed records",
}

var breedUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change fields of one breed",
	Long: `Change fields of one breed. Only fields given a non-empty value are sent.

Examples:
  dogdiet breed update --value Beagle --set food_recomm_brand=Acme --set food_recomm_format=dry
  dogdiet breed update --by dogapi_id --value 1a2b --set breed_group_AKC=Hound
  dogdiet breed update --form ./admin.html`,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetString("form")
		formID, _ := cmd.Flags().GetString("form-id")

		var f *form.Form
		if page != "" {
			var err error
			if f, err = loadHTMLForm(page, formID); err != nil {
				return err
			}
		} else {
			by, _ := cmd.Flags().GetString("by")
			value, _ := cmd.Flags().GetString("value")
			sets, _ := cmd.Flags().GetStringArray("set")

			fields, err := form.ParseAssignments(sets)
			if err != nil {
				return err
			}
			f = form.New(
				form.Field{Name: breedadmin.FieldSearchField, Value: by},
				form.Field{Name: breedadmin.FieldSearchValue, Value: value},
			)
			for _, fl := range fields {
				f.Add(fl.Name, fl.Value)
			}
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		console.Step("Updating breed...")
		_, err = breedadmin.NewHandler(client, console, slog.Default()).Update(cmd.Context(), f)
		if breedadmin.IsValidation(err) {
			return invalidInput(err)
		}
		if err != nil {
			return reported(err)
		}
		return nil
	},
}

var breedShowCmd = &cobra.Command{
	Use:   "show <search-field> <value>",
	Short: "Show one breed",
	Args:  cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return []string{breedadmin.SearchByName, breedadmin.SearchByDogAPIID}, cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		breed, err := breedadmin.NewHandler(client, console, slog.Default()).Lookup(cmd.Context(), args[0], args[1])
		if err != nil {
			return reported(err)
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return printJSON(breed)
		}

		keys := make([]string, 0, len(breed))
		for k := range breed {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := breed[k]
			if v == nil {
				v = "-"
			}
			fmt.Fprintf(stdout, "  %s %v\n", console.Bold(k+":"), v)
		}
		return nil
	},
}

var breedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all breeds",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		breeds, err := breedadmin.NewHandler(client, console, slog.Default()).List(cmd.Context())
		if err != nil {
			return reported(err)
		}

		if len(breeds) == 0 {
			fmt.Fprintln(stdout, "No breeds found.")
			return nil
		}
		for _, b := range breeds {
			fmt.Fprintf(stdout, "%s  %s  %s\n",
				console.Cyan(b.Name()),
				orDash(b["breed_group_AKC"]),
				orDash(b["breed_size_categ_AKC"]),
			)
		}
		return nil
	},
}

func orDash(v any) string {
	if v == nil {
		return "-"
	}
	s := fmt.Sprintf("%v", v)
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func init() {
	breedUpdateCmd.Flags().String("by", breedadmin.SearchByName, "search field that identifies the breed")
	breedUpdateCmd.Flags().String("value", "", "value of the search field")
	breedUpdateCmd.Flags().StringArray("set", nil, "field=value to change (repeatable)")
	breedUpdateCmd.Flags().String("form", "", "read the update from a saved admin page")
	breedUpdateCmd.Flags().String("form-id", breedUpdateFormID, "id of the <form> element in --form")

	breedUpdateCmd.RegisterFlagCompletionFunc("by", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{breedadmin.SearchByName, breedadmin.SearchByDogAPIID}, cobra.ShellCompDirectiveNoFileComp
	})
	breedUpdateCmd.RegisterFlagCompletionFunc("set", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		out := make([]string, 0, len(breedadmin.UpdatableFields))
		for _, f := range breedadmin.UpdatableFields {
			out = append(out, f+"=")
		}
		return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	})

	breedShowCmd.Flags().Bool("json", false, "print the raw record as JSON")

	breedCmd.AddCommand(breedUpdateCmd)
	breedCmd.AddCommand(breedShowCmd)
	breedCmd.AddCommand(breedListCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
	// Config commands must work even when the current config does not load.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		console.SetNoColor(noColor)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(stdout, "  %s = %s %s\n", console.Bold(k.Key), k.Value, console.Dim("($"+k.EnvVar+")"))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:       "set <key> <value>",
	Short:     "Set a configuration value",
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.ValidKeys(),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(configPath, key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:       "unset <key>",
	Short:     "Remove a configuration value so its default applies",
	Args:      cobra.ExactArgs(1),
	ValidArgs: config.ValidKeys(),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(configPath, args[0]); err != nil {
			return err
		}
		printSuccess("Unset %s", args[0])
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Run: func(cmd *cobra.Command, args []string) {
		p := configPath
		if p == "" {
			p = config.ConfigFilePath()
		}
		fmt.Fprintln(stdout, p)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configPathCmd)
}

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the configured backend and whether it answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		console.Status("Backend", "%s", appConfig.API.BaseURL)
		console.Status("Chat endpoint", "%s", appConfig.Chat.Endpoint)
		console.Status("Timeout", "%s", appConfig.RequestTimeout())

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.Get(cmd.Context(), breedadmin.ListPath)
		switch {
		case err != nil:
			printWarning("Backend not reachable at %s", client.BaseURL())
			return reported(err)
		case !resp.OK():
			console.Status("Reachable", "yes (HTTP %d)", resp.StatusCode)
		default:
			console.Status("Reachable", "yes")
		}
		return nil
	},
}
