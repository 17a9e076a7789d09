// Package usecases - plan.go generates and parses diet/workout plans.
package usecases

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"medibot/internal/domain/entities"
	"medibot/internal/domain/ports"
)

// Planner turns a user profile into a section-grouped recommendation plan:
// one generation call, then a heuristic line-based parse of the returned
// text. No retrieval and no session are involved.
type Planner struct {
	generator   ports.Generator
	logger      *zap.Logger
	maxTokens   int
	temperature float64
}

// NewPlanner creates a planner with an injected generator.
func NewPlanner(generator ports.Generator, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		generator:   generator,
		logger:      logger,
		maxTokens:   1024,
		temperature: 0.7,
	}
}

// GeneratePlan composes the profile prompt, calls the model once, and parses
// the response into plan sections.
func (p *Planner) GeneratePlan(ctx context.Context, req entities.PlanRequest) (*entities.Plan, error) {
	prompt := buildPlanPrompt(req)

	text, err := p.generator.Generate(ctx, prompt, p.maxTokens, p.temperature)
	if err != nil {
		p.logger.Error("plan generation failed", zap.Error(err))
		return nil, fmt.Errorf("generating plan: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("generating plan: empty response: %w", ports.ErrGeneration)
	}

	plan := ParsePlan(text)
	p.logger.Info("plan generated",
		zap.Int("diet_types", len(plan.DietTypes)),
		zap.Int("workouts", len(plan.Workouts)))
	return plan, nil
}

func buildPlanPrompt(req entities.PlanRequest) string {
	var sb strings.Builder
	sb.WriteString("You are a smart fitness and nutrition assistant.\n\n")
	sb.WriteString("User Profile:\n")
	fmt.Fprintf(&sb, "- Gender: %s\n", req.Gender)
	fmt.Fprintf(&sb, "- Age: %d\n", req.Age)
	fmt.Fprintf(&sb, "- Height: %d cm\n", req.HeightCm)
	fmt.Fprintf(&sb, "- Weight: %d kg\n", req.WeightKg)
	fmt.Fprintf(&sb, "- Dietary Preferences: %s\n", req.DietaryPreferences)
	fmt.Fprintf(&sb, "- Fitness Goals: %s\n", req.FitnessGoals)
	fmt.Fprintf(&sb, "- Lifestyle Factors: %s\n", req.LifestyleFactors)
	fmt.Fprintf(&sb, "- Dietary Restrictions: %s\n", req.DietaryRestrictions)
	fmt.Fprintf(&sb, "- Health Conditions: %s\n", req.HealthConditions)
	fmt.Fprintf(&sb, "- Specific Query: %s\n", req.Query)
	sb.WriteString(`
Please return a structured recommendation plan with the following sections:

Diet Recommendations:
- List 5 personalized diet types that match the user's profile.

Workout Options:
- List 5 workout suggestions tailored to their fitness goals and lifestyle.

Breakfast Ideas:
- 5 breakfast ideas.

Dinner Options:
- 5 dinner options.

Additional Recommendations:
- List useful tips including snacks, supplements, or hydration tailored to the user.
`)
	return sb.String()
}

// ParsePlan groups the model output into sections by scanning for header
// markers line by line. Lines under a known header are collected with leading
// bullet characters stripped; anything before the first header is dropped.
func ParsePlan(text string) *entities.Plan {
	plan := &entities.Plan{}

	var current *[]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case strings.Contains(line, "Diet Recommendations"):
			current = &plan.DietTypes
		case strings.Contains(line, "Workout Options"):
			current = &plan.Workouts
		case strings.Contains(strings.ToLower(line), "breakfast"):
			current = &plan.Breakfasts
		case strings.Contains(strings.ToLower(line), "dinner"):
			current = &plan.Dinners
		case strings.Contains(line, "Additional Recommendations"):
			current = &plan.AdditionalTips
		default:
			if current != nil {
				*current = append(*current, strings.Trim(line, "-•* "))
			}
		}
	}
	return plan
}
