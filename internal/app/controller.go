package app

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"securetodo/internal/adapter/worker"
	"securetodo/internal/core/domain"
	"securetodo/internal/core/port"
	"securetodo/internal/core/service"
)

// Controller is the boundary a UI talks to. Every call returns at once with a
// buffered channel that receives exactly one value when the background job
// finishes.
type Controller struct {
	auth       *service.AuthService
	tasks      port.TaskService
	dispatcher *worker.Dispatcher
	logger     zerolog.Logger
}

func NewController(auth *service.AuthService, tasks port.TaskService, dispatcher *worker.Dispatcher, logger zerolog.Logger) *Controller {
	return &Controller{
		auth:       auth,
		tasks:      tasks,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (c *Controller) Register(ctx context.Context, username, password string) <-chan domain.AuthResult {
	return c.authJob(ctx, username, func(ctx context.Context) domain.AuthResult {
		return c.auth.Register(ctx, username, password)
	})
}

func (c *Controller) Login(ctx context.Context, username, password string) <-chan domain.AuthResult {
	return c.authJob(ctx, username, func(ctx context.Context) domain.AuthResult {
		return c.auth.Login(ctx, username, password)
	})
}

func (c *Controller) SetCurrentUser(ctx context.Context, userID int) <-chan error {
	return c.userJob(ctx, userID, func(ctx context.Context) error {
		return c.auth.SetCurrentUser(ctx, userID)
	})
}

func (c *Controller) Logout() {
	c.auth.Logout()
}

func (c *Controller) CurrentUser() (domain.User, bool) {
	return c.auth.CurrentUser()
}

// AddTask creates a task owned by the session user.
func (c *Controller) AddTask(ctx context.Context, title string) <-chan error {
	return c.sessionJob(ctx, func(ctx context.Context, userID int) error {
		_, err := c.tasks.Add(ctx, title, userID)
		return err
	})
}

// UpdateTask overwrites title and completion. The owner is always the session
// user, whatever task.UserID says.
func (c *Controller) UpdateTask(ctx context.Context, task domain.Task) <-chan error {
	return c.sessionJob(ctx, func(ctx context.Context, userID int) error {
		task = c.ownedBy(task, userID)
		_, err := c.tasks.Update(ctx, task)
		return err
	})
}

func (c *Controller) DeleteTask(ctx context.Context, task domain.Task) <-chan error {
	return c.sessionJob(ctx, func(ctx context.Context, userID int) error {
		return c.tasks.Delete(ctx, c.ownedBy(task, userID))
	})
}

func (c *Controller) ObserveTasks(ctx context.Context, userID int) (*port.Subscription, error) {
	return c.tasks.Observe(ctx, userID)
}

func (c *Controller) ObserveCurrentTasks(ctx context.Context) (*port.Subscription, error) {
	user, ok := c.auth.CurrentUser()
	if !ok {
		return nil, domain.Auth(domain.MsgNotLoggedIn)
	}

	return c.tasks.Observe(ctx, user.ID)
}

func (c *Controller) authJob(ctx context.Context, username string, fn func(context.Context) domain.AuthResult) <-chan domain.AuthResult {
	out := make(chan domain.AuthResult, 1)

	err := c.dispatcher.Submit(ctx, "auth:"+username, func(ctx context.Context) {
		out <- fn(ctx)
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("Auth job rejected")
		out <- domain.Failure(domain.Storage("submit auth job", err))
	}

	return out
}

func (c *Controller) userJob(ctx context.Context, userID int, fn func(context.Context) error) <-chan error {
	out := make(chan error, 1)

	err := c.dispatcher.Submit(ctx, "user:"+strconv.Itoa(userID), func(ctx context.Context) {
		out <- fn(ctx)
	})
	if err != nil {
		c.logger.Error().Err(err).Int("user_id", userID).Msg("Task job rejected")
		out <- domain.Storage("submit task job", err)
	}

	return out
}

// sessionJob reads the session user when the call is made, not when the job runs.
func (c *Controller) sessionJob(ctx context.Context, fn func(context.Context, int) error) <-chan error {
	userID := c.auth.Session().UserID()
	if userID == 0 {
		out := make(chan error, 1)
		out <- domain.Auth(domain.MsgNotLoggedIn)
		return out
	}

	return c.userJob(ctx, userID, func(ctx context.Context) error {
		return fn(ctx, userID)
	})
}

func (c *Controller) ownedBy(task domain.Task, userID int) domain.Task {
	if !task.BelongsToUser(userID) {
		c.logger.Warn().
			Int("task_id", task.ID).
			Int("claimed_user_id", task.UserID).
			Int("user_id", userID).
			Msg("Task owner replaced by session user")
		task.UserID = userID
	}

	return task
}
