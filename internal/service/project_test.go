package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frankfika/gitlab-issuehelper/internal/model"
	"github.com/frankfika/gitlab-issuehelper/internal/service"
	"github.com/frankfika/gitlab-issuehelper/internal/service/issue_tracker"
	"github.com/frankfika/gitlab-issuehelper/internal/store"
)

var _ = Describe("ProjectService", func() {
	var (
		ctx     context.Context
		tracker *mockIssueTracker
		svc     service.ProjectService
	)

	BeforeEach(func() {
		ctx = context.Background()
		tracker = &mockIssueTracker{}
		svc = service.NewProjectService(newMemoryStores(model.Settings{}).Projects(), tracker)
	})

	DescribeTable("Add validation",
		func(mutate func(*model.ProjectCredential), field string) {
			c := validCredential()
			mutate(&c)

			_, err := svc.Add(ctx, c)

			var vErr *service.ValidationError
			Expect(errors.As(err, &vErr)).To(BeTrue())
			Expect(vErr.Field).To(Equal(field))
		},
		Entry("blank name", func(c *model.ProjectCredential) { c.Name = " " }, "name"),
		Entry("blank url", func(c *model.ProjectCredential) { c.GitLabURL = "" }, "gitlabUrl"),
		Entry("url without scheme", func(c *model.ProjectCredential) { c.GitLabURL = "gitlab.com" }, "gitlabUrl"),
		Entry("blank token", func(c *model.ProjectCredential) { c.Token = "" }, "token"),
		Entry("blank project id", func(c *model.ProjectCredential) { c.ProjectID = "" }, "projectId"),
	)

	It("normalises and stores a valid credential", func() {
		c := validCredential()
		c.GitLabURL = " https://gitlab.example.com/ "

		added, err := svc.Add(ctx, c)
		Expect(err).NotTo(HaveOccurred())
		Expect(added.GitLabURL).To(Equal("https://gitlab.example.com"))

		list, err := svc.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(1))
	})

	It("refuses a patch that blanks a required field", func() {
		added, err := svc.Add(ctx, validCredential())
		Expect(err).NotTo(HaveOccurred())

		empty := ""
		_, err = svc.Update(ctx, added.ID, model.ProjectPatch{Token: &empty})
		Expect(service.IsValidation(err)).To(BeTrue())

		name := "renamed"
		updated, err := svc.Update(ctx, added.ID, model.ProjectPatch{Name: &name})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Name).To(Equal("renamed"))
	})

	It("reports unknown projects", func() {
		_, err := svc.Update(ctx, "missing", model.ProjectPatch{})
		Expect(err).To(MatchError(store.ErrNotFound))
	})

	Describe("TestConnection", func() {
		It("validates before any network call", func() {
			c := validCredential()
			c.Token = ""

			_, err := svc.TestConnection(ctx, c)
			Expect(service.IsValidation(err)).To(BeTrue())
			Expect(tracker.tested).To(BeEmpty())
		})

		It("does not need a name and suggests one", func() {
			c := validCredential()
			c.Name = ""

			res, err := svc.TestConnection(ctx, c)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.SuggestedName).To(Equal("Acme / web"))
			Expect(res.Project.ID).To(Equal(int64(1)))
		})

		It("keeps an existing name", func() {
			res, err := svc.TestConnection(ctx, validCredential())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.SuggestedName).To(BeEmpty())
		})

		It("passes connection failures through", func() {
			tracker.testConnectionFn = func(context.Context, model.ProjectCredential) (*issue_tracker.ProjectInfo, error) {
				return nil, &issue_tracker.ConnectionFailedError{StatusCode: 404, Message: "404 Project Not Found"}
			}

			_, err := svc.TestConnection(ctx, validCredential())
			var connErr *issue_tracker.ConnectionFailedError
			Expect(errors.As(err, &connErr)).To(BeTrue())
			Expect(connErr.StatusCode).To(Equal(404))
		})
	})
})

var _ = Describe("SettingsService", func() {
	It("merges updates over defaults", func() {
		ctx := context.Background()
		svc := service.NewSettingsService(newMemoryStores(model.Settings{BaseURL: "https://a.example.com/v1", Model: "m1"}).Settings())

		updated, err := svc.Update(ctx, model.Settings{APIKey: " sk-1 ", Model: "m2"})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated).To(Equal(model.Settings{APIKey: "sk-1", BaseURL: "https://a.example.com/v1", Model: "m2"}))

		got, err := svc.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(updated))
	})

	It("does not write defaults into the stored settings", func() {
		ctx := context.Background()
		local := store.NewMemoryBackend()
		stores := store.NewStores(store.NewChain(store.NewMemoryBackend()), local,
			model.Settings{APIKey: "sk-from-env-secret", BaseURL: "https://env.example.com/v1", Model: "m1"})
		svc := service.NewSettingsService(stores.Settings())

		updated, err := svc.Update(ctx, model.Settings{Model: "user-model"})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.APIKey).To(Equal("sk-from-env-secret"))

		raw, _, err := local.Get(ctx, "gitlab-issue-reporter-settings")
		Expect(err).NotTo(HaveOccurred())
		Expect(raw).NotTo(ContainSubstring("sk-from-env-secret"))
		Expect(raw).To(MatchJSON(`{"model":"user-model"}`))
	})

	It("rejects a base URL without scheme", func() {
		svc := service.NewSettingsService(newMemoryStores(model.Settings{}).Settings())
		_, err := svc.Update(context.Background(), model.Settings{BaseURL: "api.example.com"})
		Expect(service.IsValidation(err)).To(BeTrue())
	})
})

var _ = Describe("HistoryService", func() {
	It("lists, deletes and clears", func() {
		ctx := context.Background()
		stores := newMemoryStores(model.Settings{})
		svc := service.NewHistoryService(stores.History())

		first, err := stores.History().Save(ctx, model.HistoryRecord{Title: "one"})
		Expect(err).NotTo(HaveOccurred())
		_, err = stores.History().Save(ctx, model.HistoryRecord{Title: "two"})
		Expect(err).NotTo(HaveOccurred())

		Expect(svc.Delete(ctx, first.ID)).To(Succeed())
		records, err := svc.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))

		Expect(svc.Clear(ctx)).To(Succeed())
		records, err = svc.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(BeEmpty())
	})
})
