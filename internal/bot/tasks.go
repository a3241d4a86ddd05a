package bot

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/diero-hl/agentclaw/internal/bot/memory"
	"github.com/diero-hl/agentclaw/internal/logger"
	"github.com/diero-hl/agentclaw/internal/providers/social"
	"github.com/sirupsen/logrus"
)

const (
	replyEvery      = 5 * time.Minute
	followEvery     = time.Hour
	bioEvery        = 24 * time.Hour
	engageEvery     = 10 * time.Minute
	influencerEvery = 30 * time.Minute

	maxMentions       = 8
	maxSearchTweets   = 8
	maxSearchEngaged  = 5
	maxFollowBacks    = 15
	maxBioChars       = 160
	deployCheckPeriod = 10

	mentionMinFollowers = 100
	searchMinFollowers  = 200
	searchRTFollowers   = 1000
)

// TaskPost publishes one topical tweet when inside posting hours, under the
// daily limit and far enough from the previous post.
func (b *Bot) TaskPost(ctx context.Context) error {
	log := logger.Task(b.log, "post")
	sched := b.cfg.Schedule
	now := b.now()
	b.st.ResetDaily(now)

	hour := localHour(now, sched.UTCOffset)
	if hour < sched.StartHour || hour > sched.EndHour {
		log.WithField("hour", hour).Debugf("outside posting hours %d-%d", sched.StartHour, sched.EndHour)
		return nil
	}
	if b.st.DailyPostCount >= sched.PostsPerDay {
		log.WithField("limit", sched.PostsPerDay).Debug("daily limit reached")
		return nil
	}
	if now.Sub(b.st.LastPost) < minPostInterval(sched.StartHour, sched.EndHour, sched.PostsPerDay)*8/10 {
		log.Debug("too soon since last post")
		return nil
	}

	topic := PostTopics[b.rnd.Intn(len(PostTopics))]
	text := b.generate(ctx, topic, "")
	if text == "" {
		return nil
	}
	id := b.postTweet(ctx, text)
	if id == "" {
		return nil
	}

	b.st.LastPost = b.now()
	b.st.PostCount++
	b.st.DailyPostCount++
	b.st.TotalTweets++
	log.Info(b.statusURL(id))
	return b.save()
}

// TaskReply answers new mentions from premium accounts with enough followers.
// Every inspected mention advances the cursor, answered or not.
func (b *Bot) TaskReply(ctx context.Context) error {
	log := logger.Task(b.log, "reply")
	if b.now().Sub(b.st.LastReplyCheck) < replyEvery {
		log.Debug("checked recently")
		return nil
	}

	mentions, err := b.x.MentionTimeline(ctx, b.st.LastMentionID)
	if err != nil {
		log.WithError(err).Warn("mentions unavailable")
		mentions = nil
	}
	log.Infof("found %d new mention(s)", len(mentions))
	if len(mentions) > maxMentions {
		mentions = mentions[:maxMentions]
	}

	for _, m := range mentions {
		author := b.lookupUser(ctx, m.AuthorID)
		if !author.IsPremium() || author.Followers() < mentionMinFollowers {
			log.WithFields(authorFields(author, m.AuthorID)).Debug("skipping low quality mention")
			b.st.AdvanceMention(m.ID)
			continue
		}

		text := b.generate(ctx, mentionReplyPrompt(m.Text), "")
		if text != "" {
			if b.replyTo(ctx, m.ID, text) != "" {
				b.st.TotalReplies++
			}
			if err := b.pause(ctx, 3*time.Second, 8*time.Second); err != nil {
				return b.interrupted(err)
			}
		}
		b.like(ctx, m.ID)
		b.st.AdvanceMention(m.ID)
	}

	b.st.LastReplyCheck = b.now()
	return b.save()
}

// TaskFollowBack follows followers the account does not follow yet.
func (b *Bot) TaskFollowBack(ctx context.Context) error {
	log := logger.Task(b.log, "follow")
	if b.now().Sub(b.st.LastFollowCheck) < followEvery {
		return nil
	}

	followed := 0
	followers, ferr := b.x.Followers(ctx)
	following, gerr := b.x.Following(ctx)
	switch {
	case ferr != nil:
		log.WithError(ferr).Warn("followers unavailable")
	case gerr != nil:
		log.WithError(gerr).Warn("following unavailable")
	default:
		already := make(map[string]struct{}, len(following))
		for _, u := range following {
			already[u.ID] = struct{}{}
		}
		for _, f := range followers {
			if followed >= maxFollowBacks {
				break
			}
			if _, ok := already[f.ID]; ok {
				continue
			}
			if !b.follow(ctx, f.ID) {
				continue
			}
			followed++
			b.st.TotalFollows++
			if err := b.pause(ctx, 2*time.Second, 5*time.Second); err != nil {
				return b.interrupted(err)
			}
		}
	}
	log.Infof("followed back %d user(s)", followed)

	b.st.LastFollowCheck = b.now()
	return b.save()
}

// TaskBio refreshes the profile description once a day.
func (b *Bot) TaskBio(ctx context.Context) error {
	log := logger.Task(b.log, "bio")
	if b.now().Sub(b.st.LastBioUpdate) < bioEvery {
		return nil
	}

	bio := b.generate(ctx, bioPrompt, bioExtra)
	if bio == "" || utf8.RuneCountInString(bio) > maxBioChars {
		log.Info("generated bio unusable, using a template")
		bio = BioTemplates[b.rnd.Intn(len(BioTemplates))]
	}
	b.updateBio(ctx, bio)

	b.st.LastBioUpdate = b.now()
	return b.save()
}

// TaskEngage searches two random queries and replies to quality tweets.
func (b *Bot) TaskEngage(ctx context.Context) error {
	log := logger.Task(b.log, "engage")
	if b.now().Sub(b.st.LastEngageCheck) < engageEvery {
		return nil
	}

	me, err := b.x.Me(ctx)
	if err != nil {
		log.WithError(err).Warn("own account unavailable")
	}
	myID := ""
	if me != nil {
		myID = me.ID
	}

	total := 0
	for _, q := range b.pickQueries(2) {
		tweets, err := b.x.Search(ctx, q, 10)
		if err != nil {
			log.WithError(err).WithField("query", q).Warn("search failed")
			continue
		}
		log.WithField("query", q).Infof("found %d tweets", len(tweets))
		if len(tweets) > maxSearchTweets {
			tweets = tweets[:maxSearchTweets]
		}

		for _, t := range tweets {
			if total >= maxSearchEngaged {
				break
			}
			if t.AuthorID == myID || b.st.HasEngaged(t.ID) {
				continue
			}
			author := t.Author
			if author == nil {
				author = b.lookupUser(ctx, t.AuthorID)
			}
			if !author.IsPremium() || author.Followers() < searchMinFollowers {
				log.WithFields(authorFields(author, t.AuthorID)).Debug("skipping")
				continue
			}

			text := b.generate(ctx, searchReplyPrompt(t.Text), "")
			if text == "" || b.replyTo(ctx, t.ID, text) == "" {
				continue
			}
			b.like(ctx, t.ID)
			b.st.MarkEngaged(t.ID)

			if author.Followers() >= searchRTFollowers {
				answer := b.generate(ctx, searchRTPrompt(author.Followers(), t.Text), rtExtraSearch)
				if isRT(answer) && b.retweet(ctx, t.ID) {
					b.st.TotalRetweets++
					log.Infof("retweeted @%s", author.Username)
				}
			}

			total++
			b.st.TotalReplies++
			if err := b.pause(ctx, 5*time.Second, 20*time.Second); err != nil {
				return b.interrupted(err)
			}
		}
	}
	log.Infof("engaged with %d tweet(s), %d total retweets", total, b.st.TotalRetweets)

	b.st.LastEngageCheck = b.now()
	return b.save()
}

// TaskInfluencers engages two builders and two influencers picked at random.
func (b *Bot) TaskInfluencers(ctx context.Context) error {
	log := logger.Task(b.log, "influencer")
	if b.now().Sub(b.st.LastInfluencerCheck) < influencerEvery {
		return nil
	}

	type pick struct {
		handle  string
		builder bool
	}
	var picks []pick
	for _, h := range b.shuffled(b.builders, 2) {
		picks = append(picks, pick{h, true})
	}
	for _, h := range b.shuffled(b.influencers, 2) {
		picks = append(picks, pick{h, false})
	}

	engaged := 0
	for _, p := range picks {
		ok, err := b.engageAccount(ctx, p.handle, p.builder)
		if err != nil {
			return b.interrupted(err)
		}
		if ok {
			engaged++
		}
	}
	log.Infof("engaged with %d account(s), %d total retweets", engaged, b.st.TotalRetweets)

	b.st.LastInfluencerCheck = b.now()
	return b.save()
}

// engageAccount follows the account, then likes and answers its newest tweet
// from the last day that has not been engaged yet. The error is only set when
// ctx is done.
func (b *Bot) engageAccount(ctx context.Context, handle string, builder bool) (bool, error) {
	label := "influencer"
	if builder {
		label = "builder"
	}
	log := logger.Task(b.log, "influencer").WithFields(logrus.Fields{"handle": handle, "kind": label})

	user, err := b.x.UserByUsername(ctx, handle)
	if err != nil {
		log.WithError(err).Warn("account lookup failed")
		return false, nil
	}
	log.WithFields(logrus.Fields{"followers": user.Followers(), "premium": user.IsPremium()}).Debug("account")

	if !b.st.HasFollowed(user.ID) {
		b.follow(ctx, user.ID)
	}

	tweets, err := b.x.UserTimeline(ctx, user.ID, 5)
	if err != nil {
		log.WithError(err).Warn("timeline unavailable")
		return false, nil
	}
	var target *social.Tweet
	for i := range tweets {
		t := &tweets[i]
		if b.now().Sub(t.CreatedAt) < 24*time.Hour && !b.st.HasEngaged(t.ID) {
			target = t
			break
		}
	}
	if target == nil {
		log.Debug("no new tweets")
		return false, nil
	}

	b.like(ctx, target.ID)
	text := b.generate(ctx, targetReplyPrompt(handle, target.Text, builder), "")
	if text == "" || b.replyTo(ctx, target.ID, text) == "" {
		return false, nil
	}
	b.st.TotalReplies++
	b.st.MarkEngaged(target.ID)
	if err := b.save(); err != nil {
		log.WithError(err).Warn("state save failed")
	}

	prompt, extra := targetRTPrompt(handle, label, target.Text)
	if isRT(b.generate(ctx, prompt, extra)) && b.retweet(ctx, target.ID) {
		b.st.TotalRetweets++
		log.Info("retweeted")
	}

	if err := b.pause(ctx, 5*time.Second, 15*time.Second); err != nil {
		return true, err
	}
	return true, nil
}

var (
	tokenNameRe   = regexp.MustCompile(`(?i)NAME:\s*(.+)`)
	tokenTickerRe = regexp.MustCompile(`(?i)TICKER:\s*(\w+)`)
)

// ParseTokenDetails reads "NAME: x" and "TICKER: y" from model output.
func ParseTokenDetails(s string) (name, ticker string) {
	name, ticker = "Agentclaw", "CLAW"
	if m := tokenNameRe.FindStringSubmatch(s); m != nil {
		n := m[1]
		if i := strings.Index(n, "|"); i >= 0 {
			n = n[:i]
		}
		if n = strings.TrimSpace(n); n != "" {
			name = n
		}
	}
	if m := tokenTickerRe.FindStringSubmatch(s); m != nil {
		ticker = strings.ToUpper(strings.TrimSpace(m[1]))
	}
	return name, ticker
}

// TaskTokenDeploy asks the model every tenth check whether to launch the
// token. On DEPLOY it announces, sends the Bankr command and follows up.
func (b *Bot) TaskTokenDeploy(ctx context.Context) error {
	log := logger.Task(b.log, "deploy")
	if b.st.TokenDeployed {
		return nil
	}
	b.st.DeployCheckCount++
	if b.st.DeployCheckCount%deployCheckPeriod != 0 {
		return b.save()
	}

	days := 0.0
	if !b.st.BotStartDate.IsZero() {
		days = b.now().Sub(b.st.BotStartDate).Hours() / 24
	}
	log.WithFields(logrus.Fields{
		"check": b.st.DeployCheckCount, "days": days,
		"tweets": b.st.TotalTweets, "replies": b.st.TotalReplies,
	}).Info("deploy check")

	prompt, extra := deployDecisionPrompt(days, b.st.TotalTweets, b.st.TotalReplies, b.st.TotalFollows)
	decision := b.generate(ctx, prompt, extra)
	if !strings.Contains(strings.ToUpper(decision), "DEPLOY") {
		log.Info("decided to wait")
		return b.save()
	}

	name, ticker := ParseTokenDetails(b.generate(ctx, tokenDetailsPrompt, tokenDetailsExtra))
	log.Infof("deploying %s ($%s) on Base", name, ticker)

	if announce := b.generate(ctx, announcePrompt(name, ticker), announceExtra); announce != "" {
		if id := b.postTweet(ctx, announce); id != "" {
			b.st.TotalTweets++
			b.st.DailyPostCount++
		}
	}
	if err := b.pause(ctx, 5*time.Second, 10*time.Second); err != nil {
		return b.interrupted(err)
	}

	cmdID := b.postTweet(ctx, bankrCommand(name, ticker))
	if cmdID == "" {
		log.Warn("bankr command not posted, retrying on a later check")
		return b.save()
	}

	b.st.TokenDeployed = true
	b.st.TokenName = name
	b.st.TokenTicker = "$" + ticker
	b.st.TokenDeployDate = b.now().UTC()
	b.st.TotalTweets++
	b.st.DailyPostCount++
	b.remember(ctx, memory.Entry{Type: memory.TypeTokenDeploy, Name: name, Ticker: ticker, TweetID: cmdID})
	if err := b.save(); err != nil {
		return err
	}

	if err := b.sleep(ctx, 15*time.Second); err != nil {
		return err
	}
	if followUp := b.generate(ctx, followUpPrompt(name, ticker), "Write ONLY the tweet."); followUp != "" {
		if id := b.postTweet(ctx, followUp); id != "" {
			b.st.TotalTweets++
			b.st.DailyPostCount++
		}
	}
	return b.save()
}

func (b *Bot) lookupUser(ctx context.Context, id string) *social.User {
	u, err := b.x.User(ctx, id)
	if err != nil {
		b.log.WithError(err).WithField("user_id", id).Debug("user lookup failed")
		return nil
	}
	return u
}

func (b *Bot) pickQueries(n int) []string {
	if n > len(b.queries) {
		n = len(b.queries)
	}
	out := make([]string, 0, n)
	for _, i := range b.rnd.Perm(len(b.queries))[:n] {
		out = append(out, b.queries[i])
	}
	return out
}

func (b *Bot) shuffled(list []string, n int) []string {
	cp := append([]string(nil), list...)
	b.rnd.Shuffle(len(cp), func(i, j int) { cp[i], cp[j] = cp[j], cp[i] })
	if n < len(cp) {
		cp = cp[:n]
	}
	return cp
}

// interrupted persists progress made before ctx ended and passes err through.
func (b *Bot) interrupted(err error) error {
	if serr := b.save(); serr != nil {
		b.log.WithError(serr).Warn("state save failed")
	}
	return err
}

func localHour(now time.Time, utcOffset int) int {
	return ((now.UTC().Hour()+utcOffset)%24 + 24) % 24
}

func minPostInterval(start, end, perDay int) time.Duration {
	if perDay <= 0 {
		perDay = 1
	}
	return time.Duration(end-start) * time.Hour / time.Duration(perDay)
}

func authorFields(u *social.User, fallbackID string) logrus.Fields {
	name := fallbackID
	if u != nil && u.Username != "" {
		name = u.Username
	}
	return logrus.Fields{"author": name, "followers": u.Followers(), "premium": u.IsPremium()}
}
