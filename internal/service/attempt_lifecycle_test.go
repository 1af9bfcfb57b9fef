package service

import (
	"testing"
	"testroom_backend/internal/model"
	"testroom_backend/internal/repository"
	"testroom_backend/internal/util"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 建表语句手写：模型上的 enum 列类型是 MySQL 方言，sqlite 不认识
var lifecycleSchema = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
		organization_id INTEGER DEFAULT 0,
		name TEXT, email TEXT, password TEXT,
		role TEXT DEFAULT 'student',
		disabled BOOLEAN DEFAULT 0,
		attempted_tests INTEGER DEFAULT 0,
		avatar TEXT,
		last_login DATETIME, last_seen DATETIME
	)`,
	`CREATE TABLE tests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
		organization_id INTEGER DEFAULT 0,
		name TEXT, description TEXT,
		duration_minutes INTEGER,
		total_marks INTEGER DEFAULT 0,
		status TEXT DEFAULT 'draft',
		created_by_id INTEGER DEFAULT 0,
		last_edited_by_id INTEGER DEFAULT 0,
		attempts INTEGER DEFAULT 0,
		highest_score INTEGER DEFAULT 0
	)`,
	`CREATE TABLE questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
		test_id INTEGER, position INTEGER,
		text TEXT,
		option_a TEXT, option_b TEXT, option_c TEXT, option_d TEXT,
		correct_option TEXT, marks INTEGER
	)`,
	`CREATE TABLE test_attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
		test_id INTEGER NOT NULL, student_id INTEGER NOT NULL,
		organization_id INTEGER DEFAULT 0,
		status TEXT DEFAULT 'in_progress',
		answers TEXT,
		score_achieved INTEGER DEFAULT 0,
		correct_count INTEGER DEFAULT 0,
		total_questions INTEGER DEFAULT 0,
		time_taken_seconds INTEGER DEFAULT 0,
		start_time DATETIME, expires_at DATETIME, end_time DATETIME,
		UNIQUE (test_id, student_id)
	)`,
}

// newLifecycleFixture 起一个内存库，种入一个已发布的测试
// （两题，分值 2/3，正确答案 a/b）和一名学生
func newLifecycleFixture(t *testing.T) (*AttemptService, *gorm.DB, *model.Test, *model.User) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库按连接隔离，收紧到单连接保证所有语句落在同一个库上
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range lifecycleSchema {
		require.NoError(t, db.Exec(stmt).Error)
	}

	student := &model.User{
		OrganizationID: 1,
		Name:           "王小明",
		Email:          "student@example.com",
		Password:       "hashed",
		Role:           model.Student,
	}
	require.NoError(t, db.Create(student).Error)

	test := &model.Test{
		OrganizationID:  1,
		Name:            "代数基础测验",
		DurationMinutes: 30,
		TotalMarks:      5,
		Status:          model.TestPublished,
		CreatedByID:     99,
	}
	require.NoError(t, db.Create(test).Error)

	questions := makeQuestions([]int{2, 3}, []string{"a", "b"})
	for i := range questions {
		questions[i].TestID = test.ID
		require.NoError(t, db.Create(&questions[i]).Error)
	}

	svc := NewAttemptService(
		repository.NewAttemptRepository(db),
		repository.NewTestRepository(db),
		repository.NewQuestionRepository(db),
		db,
	)
	return svc, db, test, student
}

func TestStartTwiceResumesSameAttempt(t *testing.T) {
	svc, _, test, student := newLifecycleFixture(t)

	first, err := svc.Start(test.ID, student.ID, test.OrganizationID)
	require.NoError(t, err)
	require.Equal(t, model.AttemptInProgress, first.Status)
	require.Equal(t, 2, first.TotalQuestions)

	require.NoError(t, svc.SaveAnswers(first.ID, student.ID, model.AnswerMap{"q0": "a"}))

	second, err := svc.Start(test.ID, student.ID, test.OrganizationID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, model.AttemptInProgress, second.Status)
	assert.Equal(t, model.AnswerMap{"q0": "a"}, second.Answers)
}

func TestCompleteOnTerminalAttemptFails(t *testing.T) {
	svc, db, test, student := newLifecycleFixture(t)

	view, err := svc.Start(test.ID, student.ID, test.OrganizationID)
	require.NoError(t, err)

	done, err := svc.Complete(view.ID, student.ID, model.AnswerMap{"q0": "a", "q1": "c"})
	require.NoError(t, err)
	assert.Equal(t, model.AttemptCompleted, done.Status)
	assert.Equal(t, 2, done.ScoreAchieved)
	assert.Equal(t, 1, done.CorrectCount)

	_, err = svc.Complete(view.ID, student.ID, model.AnswerMap{"q0": "a", "q1": "b"})
	assert.ErrorIs(t, err, util.ErrAttemptTerminal)

	var row model.TestAttempt
	require.NoError(t, db.First(&row, view.ID).Error)
	assert.Equal(t, model.AttemptCompleted, row.Status)
	assert.Equal(t, 2, row.ScoreAchieved)

	var testRow model.Test
	require.NoError(t, db.First(&testRow, test.ID).Error)
	assert.Equal(t, 1, testRow.Attempts)
	assert.Equal(t, 2, testRow.HighestScore)

	var studentRow model.User
	require.NoError(t, db.First(&studentRow, student.ID).Error)
	assert.Equal(t, 1, studentRow.AttemptedTests)
}

func TestSaveAnswersCannotOverwriteFinalizedAttempt(t *testing.T) {
	svc, db, test, student := newLifecycleFixture(t)

	view, err := svc.Start(test.ID, student.ID, test.OrganizationID)
	require.NoError(t, err)
	require.NoError(t, svc.SaveAnswers(view.ID, student.ID, model.AnswerMap{"q0": "a"}))

	_, err = svc.Complete(view.ID, student.ID, model.AnswerMap{"q0": "a", "q1": "b"})
	require.NoError(t, err)

	// 模拟迟到的自动保存：客户端在交卷已落库后才发出的写请求，
	// 条件更新必须落空而不是把终止态的行改回去
	attempts := repository.NewAttemptRepository(db)
	rows, err := attempts.SaveAnswersInProgress(view.ID, `{"q0":"d"}`)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	err = svc.SaveAnswers(view.ID, student.ID, model.AnswerMap{"q0": "d"})
	assert.ErrorIs(t, err, util.ErrAttemptTerminal)

	var row model.TestAttempt
	require.NoError(t, db.First(&row, view.ID).Error)
	assert.Equal(t, model.AttemptCompleted, row.Status)
	assert.Equal(t, 5, row.ScoreAchieved)
	assert.Equal(t, model.AnswerMap{"q0": "a", "q1": "b"}, row.AnswerMap())
	assert.NotNil(t, row.EndTime)
}

func TestTimeoutHappensExactlyOnce(t *testing.T) {
	svc, db, test, student := newLifecycleFixture(t)

	view, err := svc.Start(test.ID, student.ID, test.OrganizationID)
	require.NoError(t, err)
	require.NoError(t, svc.SaveAnswers(view.ID, student.ID, model.AnswerMap{"q0": "a"}))

	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&model.TestAttempt{}).
		Where("id = ?", view.ID).
		Update("expires_at", past).Error)

	require.NoError(t, svc.SweepOverdue())
	// 第二轮清扫不应再找到这条记录
	require.NoError(t, svc.SweepOverdue())

	var row model.TestAttempt
	require.NoError(t, db.First(&row, view.ID).Error)
	assert.Equal(t, model.AttemptTimedOut, row.Status)
	// 超时判分用最后一次自动保存的答案
	assert.Equal(t, 2, row.ScoreAchieved)
	assert.Equal(t, 1, row.CorrectCount)

	_, err = svc.Complete(view.ID, student.ID, model.AnswerMap{"q0": "a", "q1": "b"})
	assert.ErrorIs(t, err, util.ErrAttemptTerminal)

	err = svc.SaveAnswers(view.ID, student.ID, model.AnswerMap{"q1": "b"})
	assert.ErrorIs(t, err, util.ErrAttemptTerminal)

	var testRow model.Test
	require.NoError(t, db.First(&testRow, test.ID).Error)
	assert.Equal(t, 1, testRow.Attempts)

	var studentRow model.User
	require.NoError(t, db.First(&studentRow, student.ID).Error)
	assert.Equal(t, 1, studentRow.AttemptedTests)
}
