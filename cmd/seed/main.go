package main

import (
	"adaudit/internal/app"
	"adaudit/internal/config"
	"adaudit/internal/logger"
	"adaudit/internal/model"
	"adaudit/internal/scoring"
	"adaudit/internal/service"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// demo is one seeded audit: every questionStep-th question gets the weakest option
type demo struct {
	model        model.BusinessModel
	channel      model.Channel
	questionStep int
	age          time.Duration
}

var demos = []demo{
	{model.BusinessProducts, model.ChannelBoth, 2, 30 * 24 * time.Hour},
	{model.BusinessServices, model.ChannelGoogle, 4, 14 * 24 * time.Hour},
	{model.BusinessAccess, model.ChannelMeta, 0, 2 * 24 * time.Hour},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	if cfg.Store != config.StoreMongo {
		log.Fatal("seeding needs STORE=mongo")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stores, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("open stores")
	}
	defer stores.Close(context.Background())

	now := time.Now().UTC()
	for username := range cfg.Users {
		ownerID := service.OwnerID(username)
		for _, d := range demos {
			questions, err := stores.Catalog.Questions(d.model, d.channel)
			if err != nil {
				log.WithError(err).Fatal("demo selection")
			}
			answers := demoAnswers(questions, d.questionStep)

			audit := &model.Audit{
				OwnerID:        ownerID,
				BusinessModel:  d.model,
				Channel:        d.channel,
				CatalogVersion: stores.Catalog.Version,
				Answers:        answers,
				Result:         scoring.Score(questions, answers),
				CreatedAt:      now.Add(-d.age),
			}
			id, err := stores.Audits.Create(ctx, audit)
			if err != nil {
				log.WithError(err).Fatal("insert audit")
			}

			log.WithFields(logrus.Fields{
				"user":       username,
				"audit":      id,
				"model":      d.model,
				"percentage": audit.Percentage,
			}).Info("seeded audit")
		}
	}
}

// demoAnswers answers every question with its best option except every step-th,
// which gets its lowest-scoring option. step 0 answers everything well.
func demoAnswers(questions []model.Question, step int) map[string]int {
	answers := make(map[string]int, len(questions))
	for i, q := range questions {
		best, worst := 0, 0
		for j, opt := range q.Options {
			if opt.Score > q.Options[best].Score {
				best = j
			}
			if opt.Score < q.Options[worst].Score {
				worst = j
			}
		}
		if step > 0 && i%step == 0 {
			answers[q.ID] = worst
		} else {
			answers[q.ID] = best
		}
	}
	return answers
}
