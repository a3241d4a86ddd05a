package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/diero-hl/agentclaw/internal/logger"
	"github.com/sirupsen/logrus"
)

const failureCooldown = 5 * time.Minute

type task struct {
	name string
	run  func(context.Context) error
}

func (b *Bot) tasks() []task {
	return []task{
		{"post", b.TaskPost},
		{"reply", b.TaskReply},
		{"follow", b.TaskFollowBack},
		{"bio", b.TaskBio},
		{"engage", b.TaskEngage},
		{"influencer", b.TaskInfluencers},
		{"deploy", b.TaskTokenDeploy},
	}
}

// RunCycle runs every task once in fixed order and stops at the first error.
func (b *Bot) RunCycle(ctx context.Context) error {
	for _, t := range b.tasks() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.run(ctx); err != nil {
			return fmt.Errorf("%s: %w", t.name, err)
		}
	}
	return nil
}

// Run loops until ctx is canceled: one cycle, then a random 3-7 minute
// sleep, or a 5 minute cooldown after a failed cycle.
func (b *Bot) Run(ctx context.Context) error {
	log := logger.Task(b.log, "loop")

	if b.st.BotStartDate.IsZero() {
		b.st.BotStartDate = b.now().UTC()
		if err := b.save(); err != nil {
			log.WithError(err).Warn("state save failed")
		}
		log.Infof("first run, start date recorded: %s", b.st.BotStartDate.Format(time.RFC3339))
	}
	if b.st.TokenDeployed {
		log.Infof("token deployed: %s", b.st.TokenTicker)
	} else {
		log.Info("token not deployed yet")
	}

	for {
		if ctx.Err() != nil {
			log.Info("stopping")
			return nil
		}

		wait := time.Duration(3+b.rnd.Intn(5)) * time.Minute
		if err := b.RunCycle(ctx); err != nil {
			if ctx.Err() != nil && isCanceled(err) {
				log.Info("stopping")
				return nil
			}
			log.WithError(err).Errorf("cycle failed, recovering in %s", failureCooldown)
			wait = failureCooldown
		} else {
			log.WithFields(logrus.Fields{
				"tweets":   b.st.TotalTweets,
				"replies":  b.st.TotalReplies,
				"retweets": b.st.TotalRetweets,
				"follows":  b.st.TotalFollows,
			}).Infof("cycle done, sleeping %s", wait)
		}

		if err := b.sleep(ctx, wait); err != nil {
			log.Info("stopping")
			return nil
		}
	}
}
