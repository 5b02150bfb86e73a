package domain

import (
	"sort"
	"time"
)

const (
	EventInstructorStats = "instructor_stats_update"

	recentActivityWindow = 30 * 24 * time.Hour
	statsListLimit       = 5
)

type InstructorStats struct {
	TotalCourses     int                `json:"totalCourses"`
	ActiveCourses    int                `json:"activeCourses"`
	TotalStudents    int                `json:"totalStudents"`
	TeachingHours    float64            `json:"teachingHours"`
	RecentActivity   []CourseActivity   `json:"recentActivity"`
	UpcomingSchedule []ScheduledSession `json:"upcomingSchedule"`
}

type CourseActivity struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
	Students  int       `json:"students"`
}

type ScheduledSession struct {
	CourseID     string    `json:"courseId"`
	CourseTitle  string    `json:"courseTitle"`
	SessionTopic string    `json:"sessionTopic"`
	SessionDate  time.Time `json:"sessionDate"`
	StartTime    string    `json:"startTime,omitempty"`
	EndTime      string    `json:"endTime,omitempty"`
}

// ComputeInstructorStats summarizes one instructor's courses as of now. Recent activity
// covers courses updated in the last 30 days, newest first; the schedule lists sessions
// on or after now, soonest first. Both lists hold at most five entries.
func ComputeInstructorStats(courses []Course, now time.Time) InstructorStats {
	stats := InstructorStats{
		TotalCourses:     len(courses),
		RecentActivity:   []CourseActivity{},
		UpcomingSchedule: []ScheduledSession{},
	}
	since := now.Add(-recentActivityWindow)

	for _, c := range courses {
		if c.Status == StatusPublished {
			stats.ActiveCourses++
		}
		stats.TotalStudents += len(c.Students)
		stats.TeachingHours += c.TotalHours

		if !c.UpdatedAt.Before(since) {
			stats.RecentActivity = append(stats.RecentActivity, CourseActivity{
				ID:        c.ID,
				Title:     c.Title,
				Status:    c.Status,
				UpdatedAt: c.UpdatedAt,
				Students:  len(c.Students),
			})
		}
		for _, s := range c.LiveSessions {
			if s.SessionDate.Before(now) {
				continue
			}
			stats.UpcomingSchedule = append(stats.UpcomingSchedule, ScheduledSession{
				CourseID:     c.ID,
				CourseTitle:  c.Title,
				SessionTopic: s.Topic,
				SessionDate:  s.SessionDate,
				StartTime:    s.StartTime,
				EndTime:      s.EndTime,
			})
		}
	}

	sort.SliceStable(stats.RecentActivity, func(i, j int) bool {
		return stats.RecentActivity[i].UpdatedAt.After(stats.RecentActivity[j].UpdatedAt)
	})
	sort.SliceStable(stats.UpcomingSchedule, func(i, j int) bool {
		return stats.UpcomingSchedule[i].SessionDate.Before(stats.UpcomingSchedule[j].SessionDate)
	})
	stats.RecentActivity = stats.RecentActivity[:min(len(stats.RecentActivity), statsListLimit)]
	stats.UpcomingSchedule = stats.UpcomingSchedule[:min(len(stats.UpcomingSchedule), statsListLimit)]
	return stats
}
