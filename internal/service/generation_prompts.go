package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/hackjudge-api/internal/models"
	"github.com/noah-isme/hackjudge-api/pkg/ai"
)

const (
	summarySystemPrompt = "You are a hackathon analyst. Write a concise markdown summary of the team's submission: what they built, the problem it solves, the technology used, and anything notable. Use headings and keep it under 600 words."

	evaluationSystemPrompt = "You are a hackathon judge. Score the team against each listed criterion on a scale of 1.0 to 5.0. Respond with a single JSON object with exactly these keys: \"scores\" (map of criterion name to {\"score\", \"weight\", \"feedback\"}), \"total_score\" (number), and \"comments\" (string). Return JSON only, no prose."

	blogSystemPrompt = "You are a tech writer covering a hackathon. Turn the team summary below into an engaging blog post in markdown: a catchy title, the story of the project, and why it matters. Keep it under 800 words."

	insightSystemPrompt = "You are a hackathon analyst. Given summaries of every team's project, write a markdown insight report: common themes, standout technical approaches, and overall trends across the event."
)

// promptInput is the prepared material for one provider call: the rendered
// content, the expected response shape, and the criteria copied by value for
// evaluations.
type promptInput struct {
	systemPrompt string
	userContent  string
	shape        ai.Shape
	subject      string
	criteria     []models.Criterion
}

func (in promptInput) request(key models.ArtifactKey) ai.GenerationRequest {
	specs := make([]ai.CriterionSpec, 0, len(in.criteria))
	for _, criterion := range in.criteria {
		specs = append(specs, ai.CriterionSpec{
			Name:        criterion.Name,
			Description: criterion.Description,
			Weight:      criterion.Weight,
		})
	}

	return ai.GenerationRequest{
		Kind:         string(key.Kind),
		SystemPrompt: in.systemPrompt,
		UserContent:  in.userContent,
		Shape:        in.shape,
		Criteria:     specs,
		Subject:      in.subject,
	}
}

// prepare runs the kind-specific prerequisite check and renders the provider
// content. An unmet prerequisite comes back as *PrerequisiteError.
func (s *generationService) prepare(ctx context.Context, key models.ArtifactKey, opts GenerateOptions) (promptInput, error) {
	switch key.Kind {
	case models.ArtifactKindTeamSummary:
		return s.prepareTeamSummary(ctx, *key.TeamID)
	case models.ArtifactKindTeamEvaluation:
		return s.prepareTeamEvaluation(ctx, key, opts)
	case models.ArtifactKindTeamBlog:
		return s.prepareTeamBlog(ctx, key)
	case models.ArtifactKindHackathonInsight:
		return s.prepareHackathonInsight(ctx, key.HackathonID)
	default:
		return promptInput{}, ErrUnknownArtifactKind
	}
}

func (s *generationService) prepareTeamSummary(ctx context.Context, teamID uint) (promptInput, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return promptInput{}, err
	}

	submissions, err := s.submissions.ListSuccessful(ctx, teamID)
	if err != nil {
		return promptInput{}, err
	}

	usable := submissions[:0]
	for _, submission := range submissions {
		if submission.IsUsable() {
			usable = append(usable, submission)
		}
	}
	if len(usable) == 0 {
		return promptInput{}, &PrerequisiteError{Message: fmt.Sprintf("No successful submissions found for team %s", team.Name)}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Team: %s\nProject: %s\n", team.Name, team.ProjectName)
	for _, submission := range usable {
		fmt.Fprintf(&b, "\n## File: %s (%s)\n\n%s\n", submission.FileName, submission.FileType, submission.SummaryText)
	}

	return promptInput{
		systemPrompt: summarySystemPrompt,
		userContent:  b.String(),
		shape:        ai.ShapePlainText,
		subject:      team.Name,
	}, nil
}

func (s *generationService) prepareTeamEvaluation(ctx context.Context, key models.ArtifactKey, opts GenerateOptions) (promptInput, error) {
	team, err := s.teams.GetByID(ctx, *key.TeamID)
	if err != nil {
		return promptInput{}, err
	}

	summary, err := s.requireTeamSummary(ctx, key.HackathonID, *key.TeamID, team.Name)
	if err != nil {
		return promptInput{}, err
	}

	criteria, err := s.resolveCriteria(ctx, key.HackathonID, opts.CriterionIDs)
	if err != nil {
		return promptInput{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Team: %s\nProject: %s\n\n# Team Summary\n\n%s\n\n# Judging Criteria\n", team.Name, team.ProjectName, summary.Content)
	for _, criterion := range criteria {
		fmt.Fprintf(&b, "- %s (weight %.6g): %s\n", criterion.Name, criterion.Weight, criterion.Description)
	}

	return promptInput{
		systemPrompt: evaluationSystemPrompt,
		userContent:  b.String(),
		shape:        ai.ShapeEvaluation,
		subject:      team.Name,
		criteria:     criteria,
	}, nil
}

func (s *generationService) prepareTeamBlog(ctx context.Context, key models.ArtifactKey) (promptInput, error) {
	team, err := s.teams.GetByID(ctx, *key.TeamID)
	if err != nil {
		return promptInput{}, err
	}

	summary, err := s.requireTeamSummary(ctx, key.HackathonID, *key.TeamID, team.Name)
	if err != nil {
		return promptInput{}, err
	}

	content := fmt.Sprintf("Team: %s\nProject: %s\n\n%s", team.Name, team.ProjectName, summary.Content)

	return promptInput{
		systemPrompt: blogSystemPrompt,
		userContent:  content,
		shape:        ai.ShapePlainText,
		subject:      team.Name,
	}, nil
}

func (s *generationService) prepareHackathonInsight(ctx context.Context, hackathonID uint) (promptInput, error) {
	teams, err := s.teams.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return promptInput{}, err
	}

	var b strings.Builder
	var summaries int
	for _, team := range teams {
		teamID := team.ID
		summary, err := s.artifacts.Get(ctx, models.ArtifactKey{
			HackathonID: hackathonID,
			Kind:        models.ArtifactKindTeamSummary,
			TeamID:      &teamID,
		})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return promptInput{}, err
		}
		if summary.Status != models.ArtifactStatusSuccess || summary.Content == "" {
			continue
		}

		summaries++
		fmt.Fprintf(&b, "# Team: %s (%s)\n\n%s\n\n", team.Name, team.ProjectName, summary.Content)
	}

	if summaries == 0 {
		return promptInput{}, &PrerequisiteError{Message: "No successful team summaries found for this hackathon"}
	}

	return promptInput{
		systemPrompt: insightSystemPrompt,
		userContent:  b.String(),
		shape:        ai.ShapePlainText,
		subject:      fmt.Sprintf("Hackathon %d insight report", hackathonID),
	}, nil
}

func (s *generationService) requireTeamSummary(ctx context.Context, hackathonID, teamID uint, teamName string) (models.Artifact, error) {
	summary, err := s.artifacts.Get(ctx, models.ArtifactKey{
		HackathonID: hackathonID,
		Kind:        models.ArtifactKindTeamSummary,
		TeamID:      &teamID,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Artifact{}, &PrerequisiteError{Message: fmt.Sprintf("No successful team summary found for team %s", teamName)}
		}
		return models.Artifact{}, err
	}
	if summary.Status != models.ArtifactStatusSuccess || summary.Content == "" {
		return models.Artifact{}, &PrerequisiteError{Message: fmt.Sprintf("No successful team summary found for team %s", teamName)}
	}

	return summary, nil
}

// resolveCriteria loads the judging dimensions for an evaluation: explicitly
// selected ids first, then the hackathon's own set, then freshly provisioned
// defaults when the hackathon never defined any.
func (s *generationService) resolveCriteria(ctx context.Context, hackathonID uint, criterionIDs []uint) ([]models.Criterion, error) {
	if len(criterionIDs) > 0 {
		criteria, err := s.criteria.ListByIDs(ctx, hackathonID, criterionIDs)
		if err != nil {
			return nil, err
		}
		if len(criteria) == 0 {
			return nil, &PrerequisiteError{Message: "None of the selected judging criteria exist for this hackathon"}
		}
		return criteria, nil
	}

	criteria, err := s.criteria.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	if len(criteria) > 0 {
		return criteria, nil
	}

	return s.criteria.ProvisionDefaults(ctx, hackathonID)
}
