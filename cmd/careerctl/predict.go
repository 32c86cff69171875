package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
)

var (
	predictRole     string
	predictSkills   []string
	predictYears    int
	predictIndustry string
	predictUserID   string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict next roles for a profile",
	Long: `Rank likely next roles for the given profile using the stored
transition matrix, the newest published classifier or seniority
heuristics, and list similar alumni.`,
	Example: `  careerctl predict --role "Data Analyst" --skills sql,python --years 3`,
	Args:    cobra.NoArgs,
	RunE:    runPredict,
}

func init() {
	predictCmd.Flags().StringVar(&predictRole, "role", "", "Current role")
	predictCmd.Flags().StringSliceVar(&predictSkills, "skills", nil, "Comma-separated skills")
	predictCmd.Flags().IntVar(&predictYears, "years", 0, "Years of experience")
	predictCmd.Flags().StringVar(&predictIndustry, "industry", "", "Industry")
	predictCmd.Flags().StringVar(&predictUserID, "user-id", "", "Profile id to attach to the prediction")
	_ = predictCmd.MarkFlagRequired("role")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, _ []string) error {
	ctx, _, c, err := open(cmd, false)
	if err != nil {
		return err
	}
	defer closeComponents(ctx, c)

	c.Engine.LoadLatest(ctx)
	res, err := c.Service.Predict(ctx, model.ProfileSnapshot{
		ID:              predictUserID,
		CurrentRole:     predictRole,
		Skills:          predictSkills,
		YearsExperience: predictYears,
		Industry:        predictIndustry,
	})
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}
	return render(cmd, res, func(w io.Writer) { printPrediction(w, res) })
}

func printPrediction(w io.Writer, res *model.PredictionResult) {
	fmt.Fprintf(w, "From %q via %s", res.CurrentRole, res.Strategy)
	if res.ModelVersion != "" {
		fmt.Fprintf(w, " (model %s)", res.ModelVersion)
	}
	fmt.Fprintf(w, ", confidence %.2f\n", res.ConfidenceScore)
	for i, p := range res.PredictedRoles {
		fmt.Fprintf(w, "%2d. %-32s %5.1f%%  ~%d months  %s\n",
			i+1, p.Role, p.Probability*100, p.TimeframeMonths, p.Confidence)
		if len(p.SkillGap) > 0 {
			fmt.Fprintf(w, "    skill gap: %s\n", strings.Join(p.SkillGap, ", "))
		}
	}
	if len(res.SimilarAlumni) == 0 {
		return
	}
	fmt.Fprintln(w, "Similar alumni:")
	for _, a := range res.SimilarAlumni {
		fmt.Fprintf(w, "  %-20s %-28s %.2f\n", a.Name, a.CurrentRole, a.Similarity)
	}
}
