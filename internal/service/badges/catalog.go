package badges

import (
	"encoding/json"

	"github.com/huutrungle2001/moral-duel-api/internal/models"
)

func countCriteria(metric string, value float64) json.RawMessage {
	raw, _ := json.Marshal(models.BadgeCriteria{Metric: metric, Operator: ">=", Value: value})
	return raw
}

func flagCriteria(metric string) json.RawMessage {
	raw, _ := json.Marshal(models.BadgeCriteria{Metric: metric, Operator: "flag"})
	return raw
}

// DefaultCatalog returns the built-in badge definitions. Seeding skips slugs
// that already exist, so operator-tuned bonus values survive restarts.
func DefaultCatalog() []models.Badge {
	return []models.Badge{
		{
			Slug:        "first_win",
			Name:        "First Win",
			Description: "Voted with the winning side for the first time",
			Icon:        "trophy",
			BonusPoints: 50,
			Criteria:    countCriteria(models.BadgeMetricWins, 1),
		},
		{
			Slug:        "five_wins",
			Name:        "Five Wins",
			Description: "Voted with the winning side five times",
			Icon:        "medal",
			BonusPoints: 200,
			Criteria:    countCriteria(models.BadgeMetricWins, 5),
		},
		{
			Slug:        "ten_wins",
			Name:        "Ten Wins",
			Description: "Voted with the winning side ten times",
			Icon:        "crown",
			BonusPoints: 500,
			Criteria:    countCriteria(models.BadgeMetricWins, 10),
		},
		{
			Slug:        "top_argument",
			Name:        "Top Argument",
			Description: "Had an argument ranked in a case's top three",
			Icon:        "star",
			BonusPoints: 100,
			Criteria:    countCriteria(models.BadgeMetricTopArguments, 1),
		},
		{
			Slug:        "top_argument_3x",
			Name:        "Podium Regular",
			Description: "Had arguments ranked in the top three of three cases",
			Icon:        "sparkles",
			BonusPoints: 300,
			Criteria:    countCriteria(models.BadgeMetricTopArguments, 3),
		},
		{
			Slug:        "active_participant",
			Name:        "Active Participant",
			Description: "Earned participation rewards in twenty cases",
			Icon:        "fire",
			BonusPoints: 150,
			Criteria:    countCriteria(models.BadgeMetricParticipations, 20),
		},
		{
			Slug:        "dedicated_voter",
			Name:        "Dedicated Voter",
			Description: "Cast fifty verdict votes",
			Icon:        "check",
			BonusPoints: 250,
			Criteria:    countCriteria(models.BadgeMetricVotes, 50),
		},
		{
			Slug:        "wallet_connected",
			Name:        "Wallet Connected",
			Description: "Connected a payout wallet",
			Icon:        "wallet",
			BonusPoints: 50,
			Criteria:    flagCriteria(models.BadgeMetricWalletConnected),
		},
	}
}
