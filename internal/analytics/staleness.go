// Package analytics correlates chat history against knowledge-point usage.
package analytics

import (
	"time"

	"github.com/dijkstrabc/shittykbsystem/internal/kb/models"
)

// DefaultWindowDays is used when no window is given and the robot has no
// configured silence threshold.
const DefaultWindowDays = 30

// StaleKnowledgePoints returns the published points whose answer text was
// not echoed verbatim in any bot message of any session starting inside
// the trailing window. Comparison is exact string equality: a point counts
// as used only when its literal answer was served, so editing an answer
// makes the point look stale even when the same question kept being
// answered. That is a deliberate simplicity trade-off — there is no foreign
// key from chat message to source point.
//
// robotID filters sessions when non-empty. windowDays <= 0 falls back to
// DefaultWindowDays. Pure function, cannot fail.
func StaleKnowledgePoints(points []models.KnowledgePoint, sessions []models.ChatSession, windowDays int, robotID string) []models.KnowledgePoint {
	return staleAt(points, sessions, windowDays, robotID, time.Now())
}

func staleAt(points []models.KnowledgePoint, sessions []models.ChatSession, windowDays int, robotID string, now time.Time) []models.KnowledgePoint {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	cutoff := now.AddDate(0, 0, -windowDays)

	served := make(map[string]struct{})
	for _, session := range sessions {
		if robotID != "" && session.RobotID != robotID {
			continue
		}
		if session.StartTime.Before(cutoff) || session.StartTime.After(now) {
			continue
		}
		for _, message := range session.Messages {
			if message.Sender == models.SenderBot {
				served[message.Text] = struct{}{}
			}
		}
	}

	var stale []models.KnowledgePoint
	for _, point := range points {
		if point.Status != models.StatusPublished {
			continue
		}
		if _, used := served[point.Answer]; !used {
			stale = append(stale, point)
		}
	}
	return stale
}

// WindowForRobot resolves the staleness window for a robot: its configured
// threshold when positive, the default otherwise.
func WindowForRobot(robot *models.Robot) int {
	if robot != nil && robot.SilenceThresholdDays > 0 {
		return robot.SilenceThresholdDays
	}
	return DefaultWindowDays
}
