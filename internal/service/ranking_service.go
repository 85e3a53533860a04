package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classcast/classcast-backend/internal/config"
	"github.com/classcast/classcast-backend/internal/domain"
	"github.com/classcast/classcast-backend/internal/events"
	"github.com/classcast/classcast-backend/internal/model"
)

// rankingCacheTTL bounds how long a stale leaderboard can outlive its
// activity in Redis.
const rankingCacheTTL = time.Hour

// RankingService derives the live leaderboard and post-hoc statistics
// from the stored responses. Every roster member appears in a ranking:
// respondents ordered best score first with earliest submission winning
// ties, the rest alphabetically with no position.
type RankingService struct {
	responses  ResponseStore
	subjects   SubjectStore
	sessions   SessionStore
	activities *ActivityService
	rdb        *redis.Client
	publisher  events.Publisher
	log        zerolog.Logger
	now        func() time.Time
}

// NewRankingService creates a new RankingService.
func NewRankingService(
	responses ResponseStore,
	subjects SubjectStore,
	sessions SessionStore,
	activities *ActivityService,
	rdb *redis.Client,
	publisher events.Publisher,
	log zerolog.Logger,
	now func() time.Time,
) *RankingService {
	if now == nil {
		now = time.Now
	}
	return &RankingService{
		responses:  responses,
		subjects:   subjects,
		sessions:   sessions,
		activities: activities,
		rdb:        rdb,
		publisher:  publisher,
		log:        log.With().Str("component", "ranking_service").Logger(),
		now:        now,
	}
}

// Rank computes the full-roster leaderboard for an activity the teacher
// owns, caches it, and pushes a ranking update to the live channel.
func (s *RankingService) Rank(ctx context.Context, ownerID, activityID uuid.UUID) ([]model.RankingEntry, error) {
	activity, session, err := s.activities.ownedActivity(ctx, ownerID, activityID)
	if err != nil {
		return nil, err
	}
	if session.SubjectID == nil {
		return nil, domain.ErrInvalidState
	}

	roster, err := s.subjects.ListRoster(ctx, *session.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	responses, err := s.responses.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}

	entries := buildRanking(roster, responses)

	s.cacheRanking(ctx, activityID, entries)
	s.publisher.Publish(ctx, config.CacheKey.SubjectEventsChannel(session.SubjectID.String()), events.Event{
		Type:       events.TypeRankingUpdate,
		SessionID:  session.ID,
		ActivityID: activity.ID,
		Payload:    entries,
		Timestamp:  s.now(),
	})
	return entries, nil
}

// buildRanking merges the roster with the ordered responses:
// respondents keep the store's score-then-time order and take positions
// 1..N, roster members without a response follow in name order.
func buildRanking(roster []model.RosterEntry, responses []model.Response) []model.RankingEntry {
	entries := make([]model.RankingEntry, 0, len(roster))
	responded := make(map[uuid.UUID]struct{}, len(responses))

	for i, r := range responses {
		position := i + 1
		submittedAt := r.SubmittedAt
		responded[r.StudentID] = struct{}{}
		entries = append(entries, model.RankingEntry{
			StudentID:   r.StudentID,
			Name:        r.StudentName,
			Status:      model.RankingStatusSubmitted,
			Score:       r.Score,
			Total:       r.Total,
			Percentage:  r.Percentage,
			Position:    &position,
			SubmittedAt: &submittedAt,
		})
	}

	// Roster arrives name-ascending, so the tail stays alphabetical.
	for _, member := range roster {
		if _, ok := responded[member.StudentID]; ok {
			continue
		}
		entries = append(entries, model.RankingEntry{
			StudentID: member.StudentID,
			Name:      member.Name,
			Status:    model.RankingStatusWaiting,
		})
	}
	return entries
}

func (s *RankingService) cacheRanking(ctx context.Context, activityID uuid.UUID, entries []model.RankingEntry) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	key := config.CacheKey.ActivityRankingKey(activityID.String())
	if err := s.rdb.Set(ctx, key, raw, rankingCacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("ranking cache write failed")
	}
}

// Summarize builds the post-hoc report for an activity the teacher
// owns: response rate against the roster, average percentage, score
// distribution, and per-question correctness for quizzes.
func (s *RankingService) Summarize(ctx context.Context, ownerID, activityID uuid.UUID) (*model.ActivityStats, error) {
	activity, session, err := s.activities.ownedActivity(ctx, ownerID, activityID)
	if err != nil {
		return nil, err
	}
	if session.SubjectID == nil {
		return nil, domain.ErrInvalidState
	}

	enrolled, err := s.subjects.CountEnrolled(ctx, *session.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("count enrolled: %w", err)
	}
	responses, err := s.responses.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}

	stats := &model.ActivityStats{
		ResponseCount: len(responses),
		EnrolledCount: enrolled,
	}
	if enrolled > 0 {
		stats.ResponseRate = float64(len(responses)) / float64(enrolled) * 100
	}

	var sum float64
	for _, r := range responses {
		sum += r.Percentage
		switch {
		case r.Percentage >= 90:
			stats.Distribution.AtLeast90++
		case r.Percentage >= 70:
			stats.Distribution.AtLeast70++
		case r.Percentage >= 50:
			stats.Distribution.AtLeast50++
		default:
			stats.Distribution.Below50++
		}
	}
	if len(responses) > 0 {
		stats.AveragePercentage = sum / float64(len(responses))
	}

	if activity.Kind == model.ActivityKindQuiz {
		questionStats, err := buildQuestionStats(activity, responses)
		if err != nil {
			return nil, err
		}
		stats.QuestionStats = questionStats
	}
	return stats, nil
}

func buildQuestionStats(activity *model.Activity, responses []model.Response) ([]model.QuestionStat, error) {
	quiz, err := activity.Quiz()
	if err != nil {
		return nil, fmt.Errorf("decode quiz payload: %w", err)
	}
	if len(quiz.Questions) == 0 || len(responses) == 0 {
		return nil, nil
	}

	correctCounts := make([]int, len(quiz.Questions))
	for _, r := range responses {
		var answers model.QuizAnswers
		if err := json.Unmarshal(r.Payload, &answers); err != nil {
			continue
		}
		for i, q := range quiz.Questions {
			if chosen, ok := answers.Answers[strconv.Itoa(i)]; ok && chosen == q.Correct {
				correctCounts[i]++
			}
		}
	}

	stats := make([]model.QuestionStat, len(quiz.Questions))
	for i, q := range quiz.Questions {
		stats[i] = model.QuestionStat{
			Index:       i,
			Question:    q.Question,
			CorrectRate: float64(correctCounts[i]) / float64(len(responses)) * 100,
		}
	}
	return stats, nil
}
