package service

import (
	"math"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

// GradeInput is everything the calculator needs for one student, subject and term.
type GradeInput struct {
	// SubmissionScores are the student's scored submissions for the matching tasks.
	SubmissionScores []float64
	// Exams lists exam ids per category.
	Exams map[models.ExamType][]string
	// ExamResults maps exam id to the student's score. Missing ids count as zero.
	ExamResults map[string]float64
}

// GradeBreakdown is the calculator output.
type GradeBreakdown struct {
	Components  models.GradeComponents `json:"components"`
	Weights     models.GradeWeights    `json:"weights"`
	FinalScore  float64                `json:"final_score"`
	LetterGrade string                 `json:"letter_grade"`
}

// CalculateGrade combines the component averages with weights into a final score and letter.
// Averages accumulate at full precision and are rounded to two decimals on output.
func CalculateGrade(in GradeInput, weights models.GradeWeights) GradeBreakdown {
	taskAvg := mean(in.SubmissionScores)
	quizAvg := examAverage(in.Exams[models.ExamTypeQuiz], in.ExamResults)
	midterm := examAverage(in.Exams[models.ExamTypeMidterm], in.ExamResults)
	final := examAverage(in.Exams[models.ExamTypeFinal], in.ExamResults)

	score := taskAvg*float64(weights.Task)/100 +
		quizAvg*float64(weights.Quiz)/100 +
		midterm*float64(weights.Midterm)/100 +
		final*float64(weights.Final)/100
	score = round2(score)

	return GradeBreakdown{
		Components: models.GradeComponents{
			TaskAvg: round2(taskAvg),
			QuizAvg: round2(quizAvg),
			Midterm: round2(midterm),
			Final:   round2(final),
		},
		Weights:     weights,
		FinalScore:  score,
		LetterGrade: LetterGrade(score),
	}
}

// LetterGrade maps a final score onto A..E. Band lower bounds are inclusive.
func LetterGrade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "E"
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// examAverage divides by the number of exams, not results.
func examAverage(examIDs []string, results map[string]float64) float64 {
	if len(examIDs) == 0 {
		return 0
	}
	var sum float64
	for _, id := range examIDs {
		sum += results[id]
	}
	return sum / float64(len(examIDs))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
