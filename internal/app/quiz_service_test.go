package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"quiz-studio-service/internal/app"
	"quiz-studio-service/internal/domain"
	"quiz-studio-service/internal/event"
	"quiz-studio-service/internal/infra/memory"
)

type fixture struct {
	svc    *app.QuizService
	events *event.Recorder
	clock  *time.Time
}

func newFixture() *fixture {
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	f := &fixture{events: &event.Recorder{}, clock: &now}
	seq := 0
	f.svc = app.NewQuizService(memory.NewQuizStore(),
		app.WithPublisher(f.events),
		app.WithClock(func() time.Time { return *f.clock }),
		app.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	)
	return f
}

func (f *fixture) tick() {
	*f.clock = f.clock.Add(time.Minute)
}

func capitals(published bool) domain.DraftInput {
	return domain.DraftInput{
		Title: "  Capitals ",
		Questions: []domain.Question{
			{Text: "Capital of France?", Options: []string{"Paris", "Lyon"}, CorrectIndex: domain.IndexPtr(0)},
			{Text: "Capital of Japan?", Options: []string{"Osaka", "Tokyo"}, CorrectIndex: domain.IndexPtr(1)},
		},
		IsPublished: published,
	}
}

func TestCreateQuiz(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.CreateQuiz(ctx, domain.Anonymous, capitals(false)); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	quiz, err := f.svc.CreateQuiz(ctx, "u1", capitals(true))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if quiz.Title != "Capitals" || quiz.OwnerID != "u1" || !quiz.IsPublished {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
	if quiz.ID == "" || quiz.Questions[0].ID == "" || quiz.Questions[0].ID == quiz.Questions[1].ID {
		t.Fatalf("expected distinct ids, got %+v", quiz)
	}
	if !quiz.CreatedAt.Equal(*f.clock) || !quiz.UpdatedAt.Equal(*f.clock) {
		t.Fatalf("unexpected timestamps %v %v", quiz.CreatedAt, quiz.UpdatedAt)
	}
	types := f.events.Types()
	if len(types) != 2 || types[0] != event.QuizCreated || types[1] != event.QuizPublished {
		t.Fatalf("unexpected events %v", types)
	}
}

func TestCreateQuizRejectsInvalidDraft(t *testing.T) {
	f := newFixture()
	in := capitals(false)
	in.Questions[1].CorrectIndex = nil

	_, err := f.svc.CreateQuiz(context.Background(), "u1", in)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Reason != domain.ReasonMissingCorrectAnswer || verr.Question != 1 {
		t.Fatalf("expected MissingCorrectAnswer on question 1, got %v", err)
	}
	if mine, _ := f.svc.ListMine(context.Background(), "u1"); len(mine) != 0 {
		t.Fatalf("rejected draft must not be stored")
	}
	if len(f.events.Types()) != 0 {
		t.Fatalf("rejected draft must not emit events")
	}
}

func TestCreateQuizDeduplicatesQuestionIDs(t *testing.T) {
	f := newFixture()
	in := capitals(false)
	in.Questions[0].ID = "same"
	in.Questions[1].ID = "same"
	quiz, err := f.svc.CreateQuiz(context.Background(), "u1", in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if quiz.Questions[0].ID != "same" || quiz.Questions[1].ID == "same" {
		t.Fatalf("expected first id kept and second replaced, got %q %q", quiz.Questions[0].ID, quiz.Questions[1].ID)
	}
}

func TestReadVisibility(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	draft, _ := f.svc.CreateQuiz(ctx, "u1", capitals(false))

	if _, err := f.svc.GetQuiz(ctx, "u1", draft.ID); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	for _, requester := range []string{domain.Anonymous, "u2"} {
		if _, err := f.svc.GetQuiz(ctx, requester, draft.ID); !errors.Is(err, domain.ErrQuizNotFound) {
			t.Fatalf("%q: expected ErrQuizNotFound, got %v", requester, err)
		}
		if _, err := f.svc.GradeAttempt(ctx, requester, draft.ID, []int{0, 1}); !errors.Is(err, domain.ErrQuizNotFound) {
			t.Fatalf("%q: grading a hidden quiz must look missing, got %v", requester, err)
		}
	}
	if _, err := f.svc.GetQuiz(ctx, "u1", "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestListings(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	first, _ := f.svc.CreateQuiz(ctx, "u1", capitals(true))
	f.tick()
	_, _ = f.svc.CreateQuiz(ctx, "u1", capitals(false))
	f.tick()
	third, _ := f.svc.CreateQuiz(ctx, "u2", capitals(true))

	published, err := f.svc.ListPublished(ctx)
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if len(published) != 2 || published[0].ID != third.ID || published[1].ID != first.ID {
		t.Fatalf("expected newest published first, got %+v", published)
	}

	mine, err := f.svc.ListMine(ctx, "u1")
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 2 || mine[1].ID != first.ID {
		t.Fatalf("unexpected own quizzes %+v", mine)
	}
	if _, err := f.svc.ListMine(ctx, domain.Anonymous); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestUpdateQuiz(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	quiz, _ := f.svc.CreateQuiz(ctx, "u1", capitals(false))
	f.tick()

	title := "World capitals"
	if _, err := f.svc.UpdateQuiz(ctx, domain.Anonymous, quiz.ID, domain.PatchInput{Title: &title}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := f.svc.UpdateQuiz(ctx, "u2", quiz.ID, domain.PatchInput{Title: &title}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	updated, err := f.svc.UpdateQuiz(ctx, "u1", quiz.ID, domain.PatchInput{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title || len(updated.Questions) != 2 || !updated.UpdatedAt.After(quiz.UpdatedAt) {
		t.Fatalf("unexpected update %+v", updated)
	}
	if !updated.CreatedAt.Equal(quiz.CreatedAt) || updated.Questions[0].ID != quiz.Questions[0].ID {
		t.Fatalf("update must keep creation time and question ids")
	}

	empty := ""
	if _, err := f.svc.UpdateQuiz(ctx, "u1", quiz.ID, domain.PatchInput{Title: &empty}); domain.ReasonOf(err) != domain.ReasonMissingTitle {
		t.Fatalf("expected MissingTitle, got %v", err)
	}
	if _, err := f.svc.UpdateQuiz(ctx, "u1", quiz.ID, domain.PatchInput{Questions: []domain.Question{}}); domain.ReasonOf(err) != domain.ReasonNoQuestions {
		t.Fatalf("expected NoQuestions, got %v", err)
	}
	stored, _ := f.svc.GetQuiz(ctx, "u1", quiz.ID)
	if stored.Title != title {
		t.Fatalf("rejected update must not be stored, got %q", stored.Title)
	}
}

func TestPublishToggleSkipsValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	quiz, _ := f.svc.CreateQuiz(ctx, "u1", capitals(false))

	published, err := f.svc.SetPublished(ctx, "u1", quiz.ID, true)
	if err != nil || !published.IsPublished {
		t.Fatalf("publish: %v %+v", err, published)
	}
	if _, err := f.svc.GetQuiz(ctx, domain.Anonymous, quiz.ID); err != nil {
		t.Fatalf("published quiz must be public: %v", err)
	}
	if _, err := f.svc.SetPublished(ctx, "u1", quiz.ID, false); err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	types := f.events.Types()
	want := []event.Type{event.QuizCreated, event.QuizPublished, event.QuizUnpublished}
	if fmt.Sprint(types) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, types)
	}
}

func TestDeleteQuiz(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	quiz, _ := f.svc.CreateQuiz(ctx, "u1", capitals(true))

	if err := f.svc.DeleteQuiz(ctx, "u2", quiz.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := f.svc.DeleteQuiz(ctx, domain.Anonymous, quiz.ID); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if err := f.svc.DeleteQuiz(ctx, "u1", quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.GetQuiz(ctx, "u1", quiz.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound after delete, got %v", err)
	}
	if err := f.svc.DeleteQuiz(ctx, "u1", quiz.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("second delete: expected ErrQuizNotFound, got %v", err)
	}
}

func TestGradeAttempt(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	quiz, _ := f.svc.CreateQuiz(ctx, "u1", capitals(true))

	res, err := f.svc.GradeAttempt(ctx, domain.Anonymous, quiz.ID, []int{0, 0})
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if res.Score != 1 || res.Total != 2 || res.Percentage != 50 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestDraftEditing(t *testing.T) {
	f := newFixture()
	d := f.svc.NewDraft()
	d, err := f.svc.EditDraft(d, domain.SetTitle{Text: "Capitals"})
	if err != nil {
		t.Fatalf("set title: %v", err)
	}
	if _, err := f.svc.EditDraft(d, domain.DeleteQuestion{Question: 0}); !errors.Is(err, domain.ErrLastQuestion) {
		t.Fatalf("expected ErrLastQuestion, got %v", err)
	}
	d, _ = f.svc.EditDraft(d, domain.SetQuestion{Question: 0, Text: "Capital of France?"})
	d, _ = f.svc.EditDraft(d, domain.SetOption{Question: 0, Option: 0, Text: "Paris"})
	d, _ = f.svc.EditDraft(d, domain.SetOption{Question: 0, Option: 1, Text: "Lyon"})
	d, _ = f.svc.EditDraft(d, domain.SetCorrect{Question: 0, Option: 0})

	quiz, err := f.svc.CreateQuiz(context.Background(), "u1", domain.DraftInput{Title: d.Title, Questions: d.Questions})
	if err != nil {
		t.Fatalf("edited draft must save: %v", err)
	}
	if *quiz.Questions[0].CorrectIndex != 0 {
		t.Fatalf("unexpected stored answer %+v", quiz.Questions[0])
	}
}

func TestPublishRequiresRealTitle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	in := capitals(true)
	in.Title = domain.DefaultTitle
	if _, err := f.svc.CreateQuiz(ctx, "u1", in); domain.ReasonOf(err) != domain.ReasonMissingTitle {
		t.Fatalf("expected MissingTitle when publishing a placeholder title, got %v", err)
	}

	in.IsPublished = false
	draft, err := f.svc.CreateQuiz(ctx, "u1", in)
	if err != nil {
		t.Fatalf("unpublished draft with placeholder title: %v", err)
	}
	if _, err := f.svc.SetPublished(ctx, "u1", draft.ID, true); domain.ReasonOf(err) != domain.ReasonMissingTitle {
		t.Fatalf("expected MissingTitle on publish toggle, got %v", err)
	}
	stored, _ := f.svc.GetQuiz(ctx, "u1", draft.ID)
	if stored.IsPublished {
		t.Fatalf("rejected publish must not be stored")
	}

	title := "Capitals"
	published := true
	if _, err := f.svc.UpdateQuiz(ctx, "u1", draft.ID, domain.PatchInput{Title: &title, IsPublished: &published}); err != nil {
		t.Fatalf("publish with real title: %v", err)
	}
	placeholder := domain.DefaultTitle
	if _, err := f.svc.UpdateQuiz(ctx, "u1", draft.ID, domain.PatchInput{Title: &placeholder}); domain.ReasonOf(err) != domain.ReasonMissingTitle {
		t.Fatalf("published quiz must not go back to the placeholder title, got %v", err)
	}
}
