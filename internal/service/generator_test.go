package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frankfika/gitlab-issuehelper/common/llm"
	"github.com/frankfika/gitlab-issuehelper/internal/model"
	"github.com/frankfika/gitlab-issuehelper/internal/service"
)

var _ = Describe("GeneratorService", func() {
	var (
		ctx       context.Context
		client    *mockLLMClient
		recorder  *mockRecorder
		settings  model.Settings
		built     []model.Settings
		generator service.GeneratorService
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = &mockLLMClient{generateFn: streamChunks("[Bug] Export button unresponsive", "\n\n## 问题描述\n", "严重程度：P1")}
		recorder = &mockRecorder{}
		settings = model.Settings{APIKey: "sk-test", BaseURL: "https://llm.example.com/v1", Model: "m"}
		built = nil
	})

	JustBeforeEach(func() {
		stores := newMemoryStores(settings)
		factory := func(s model.Settings) (llm.Client, error) {
			built = append(built, s)
			return client, nil
		}
		generator = service.NewGeneratorService(stores.Settings(), factory, service.NewDrafts(), recorder)
	})

	It("streams growing content and derives title and labels", func() {
		var increments []string

		draft, err := generator.Generate(ctx, service.GenerateParams{
			Description: "Export button does nothing on click",
		}, func(content string) { increments = append(increments, content) })

		Expect(err).NotTo(HaveOccurred())
		Expect(increments).To(HaveLen(3))
		for i := 1; i < len(increments); i++ {
			Expect(increments[i]).To(HavePrefix(increments[i-1]))
		}
		Expect(draft.Content).To(Equal(increments[2]))
		Expect(draft.Title).To(Equal("[Bug] Export button unresponsive"))
		Expect(draft.Labels).To(Equal([]string{"bug", "p1"}))
		Expect(recorder.results("generation")).To(Equal([]string{"ok"}))
	})

	It("passes the image count but never the images", func() {
		_, err := generator.Generate(ctx, service.GenerateParams{
			Images: []model.Image{{Data: []byte{1}}, {Data: []byte{2}}},
		}, nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(client.requests).To(HaveLen(1))
		Expect(client.requests[0].ImageCount).To(Equal(2))
		Expect(client.requests[0].Description).To(BeEmpty())
	})

	It("builds the client from stored settings", func() {
		_, err := generator.Generate(ctx, service.GenerateParams{Description: "x"}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(built).To(Equal([]model.Settings{settings}))
	})

	It("rejects an empty request without calling the model", func() {
		_, err := generator.Generate(ctx, service.GenerateParams{Description: "   "}, nil)

		var vErr *service.ValidationError
		Expect(errors.As(err, &vErr)).To(BeTrue())
		Expect(vErr.Field).To(Equal("description"))
		Expect(client.requests).To(BeEmpty())
	})

	Context("without an API key", func() {
		BeforeEach(func() {
			settings.APIKey = ""
		})

		It("returns a validation error", func() {
			_, err := generator.Generate(ctx, service.GenerateParams{Description: "x"}, nil)
			Expect(service.IsValidation(err)).To(BeTrue())
			Expect(built).To(BeEmpty())
		})
	})

	It("surfaces completion failures", func() {
		client.generateFn = func(context.Context, llm.GenerateRequest, llm.IncrementFunc) (*llm.GenerateResult, error) {
			return nil, &llm.RequestFailedError{StatusCode: 401, Message: "invalid key"}
		}

		_, err := generator.Generate(ctx, service.GenerateParams{Description: "x"}, nil)

		var reqErr *llm.RequestFailedError
		Expect(errors.As(err, &reqErr)).To(BeTrue())
		Expect(reqErr.StatusCode).To(Equal(401))
		Expect(recorder.results("generation")).To(Equal([]string{"error"}))
	})

	It("lets the most recently started generation of a draft win", func() {
		started := make(chan struct{})
		release := make(chan struct{})
		var firstIncrements []string
		var mu sync.Mutex

		client.generateFn = func(ctx context.Context, req llm.GenerateRequest, onIncrement llm.IncrementFunc) (*llm.GenerateResult, error) {
			if req.Description == "first" {
				close(started)
				select {
				case <-ctx.Done():
				case <-release:
				}
				onIncrement("stale")
				return nil, &llm.RequestFailedError{Err: ctx.Err()}
			}
			return streamChunks("[Feature] fresh")(ctx, req, onIncrement)
		}

		firstErr := make(chan error, 1)
		go func() {
			defer GinkgoRecover()
			_, err := generator.Generate(ctx, service.GenerateParams{DraftID: "d1", Description: "first"}, func(c string) {
				mu.Lock()
				firstIncrements = append(firstIncrements, c)
				mu.Unlock()
			})
			firstErr <- err
		}()
		Eventually(started).Should(BeClosed())

		draft, err := generator.Generate(ctx, service.GenerateParams{DraftID: "d1", Description: "second"}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(draft.Title).To(Equal("[Feature] fresh"))

		close(release)
		Eventually(firstErr, time.Second).Should(Receive(MatchError(service.ErrSuperseded)))

		mu.Lock()
		defer mu.Unlock()
		Expect(firstIncrements).To(BeEmpty())
	})

	It("does not cancel generations of other drafts", func() {
		draftA, err := generator.Generate(ctx, service.GenerateParams{DraftID: "a", Description: "x"}, nil)
		Expect(err).NotTo(HaveOccurred())
		draftB, err := generator.Generate(ctx, service.GenerateParams{DraftID: "b", Description: "y"}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(draftA.Content).To(Equal(draftB.Content))
	})
})

var _ = Describe("Drafts", func() {
	It("forgets finished runs", func() {
		drafts := service.NewDrafts()
		stores := newMemoryStores(model.Settings{APIKey: "k"})
		client := &mockLLMClient{generateFn: streamChunks("x")}
		generator := service.NewGeneratorService(stores.Settings(), func(model.Settings) (llm.Client, error) {
			return client, nil
		}, drafts, nil)

		_, err := generator.Generate(context.Background(), service.GenerateParams{DraftID: "d", Description: "x"}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(drafts.InFlight()).To(BeZero())
	})
})
