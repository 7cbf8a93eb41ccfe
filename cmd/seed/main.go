package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-user-service/config"
	"github.com/oksasatya/go-ddd-user-service/internal/application"
	"github.com/oksasatya/go-ddd-user-service/internal/container"
	"github.com/oksasatya/go-ddd-user-service/pkg/helpers"
)

var demoUsers = []application.CreateUserInput{
	{Email: "ada.lovelace@example.com", Name: "Ada Lovelace"},
	{Email: "alan.turing@example.com", Name: "Alan Turing"},
	{Email: "grace.hopper@example.com", Name: "Grace Hopper"},
	{Email: "edsger.dijkstra@example.com", Name: "Edsger Dijkstra"},
	{Email: "barbara.liskov@example.com", Name: "Barbara Liskov"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx := context.Background()
	c, err := container.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize dependencies")
	}
	defer c.Close()

	created := 0
	for _, in := range demoUsers {
		u, err := c.UserService.CreateUser(ctx, in)
		var exists *application.UserAlreadyExistsError
		switch {
		case errors.As(err, &exists):
			fmt.Printf("skipped existing user: email=%s\n", in.Email)
			continue
		case err != nil:
			logger.WithError(err).WithField("email", in.Email).Fatal("failed to seed user")
		}
		created++
		fmt.Printf("seeded user: id=%s email=%s name=%s\n", u.ID, u.Email, u.Name)
	}
	fmt.Printf("seed finished: %d created, %d skipped\n", created, len(demoUsers)-created)
}
