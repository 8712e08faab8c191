package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/atendo/crm-campaigns/internal/models"
	"github.com/atendo/crm-campaigns/internal/repository"
	repomocks "github.com/atendo/crm-campaigns/internal/repository/mocks"
	"github.com/atendo/crm-campaigns/internal/service"
)

func newTemplateService(ctrl *gomock.Controller) (service.TemplateService, *repomocks.MockTemplateRepository) {
	repo := repomocks.NewMockRepository(ctrl)
	templates := repomocks.NewMockTemplateRepository(ctrl)
	repo.EXPECT().Template().Return(templates).AnyTimes()

	return service.NewTemplateService(repo, zap.NewNop()), templates
}

func TestTemplateService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, templates := newTemplateService(ctrl)

	var created *models.MessageTemplate
	templates.EXPECT().Create(gomock.Any()).DoAndReturn(func(tpl *models.MessageTemplate) error {
		created = tpl
		return nil
	})

	tpl, err := svc.Create("owner-1", service.CreateTemplateInput{
		Name:     "  Welcome  ",
		Body:     "Hello {name}, thanks for reaching out",
		Category: "onboarding",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, tpl.ID)
	assert.Equal(t, "owner-1", tpl.OwnerID)
	assert.Equal(t, "Welcome", tpl.Name)
	assert.True(t, tpl.Category.Valid)
	assert.Equal(t, "onboarding", tpl.Category.String)
	assert.Equal(t, created, tpl)
}

func TestTemplateService_Create_NoCategory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, templates := newTemplateService(ctrl)
	templates.EXPECT().Create(gomock.Any()).Return(nil)

	tpl, err := svc.Create("owner-1", service.CreateTemplateInput{
		Name: "Welcome",
		Body: "Hello",
	})
	require.NoError(t, err)
	assert.False(t, tpl.Category.Valid)
}

func TestTemplateService_Create_Validation(t *testing.T) {
	tests := []struct {
		name      string
		input     service.CreateTemplateInput
		wantField string
	}{
		{
			name:      "empty name",
			input:     service.CreateTemplateInput{Body: "Hello {name}"},
			wantField: "name",
		},
		{
			name:      "whitespace name",
			input:     service.CreateTemplateInput{Name: "   ", Body: "Hello {name}"},
			wantField: "name",
		},
		{
			name:      "empty body",
			input:     service.CreateTemplateInput{Name: "Welcome"},
			wantField: "body",
		},
		{
			name:      "whitespace body",
			input:     service.CreateTemplateInput{Name: "Welcome", Body: "  \n "},
			wantField: "body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, _ := newTemplateService(ctrl)

			_, err := svc.Create("owner-1", tt.input)

			var vErr *service.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestTemplateService_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, templates := newTemplateService(ctrl)
	templates.EXPECT().GetByID("owner-1", "missing").Return(nil, repository.ErrNotFound)

	_, err := svc.Get("owner-1", "missing")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestTemplateService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, templates := newTemplateService(ctrl)
	templates.EXPECT().List("owner-1").Return([]*models.MessageTemplate{
		{ID: "tpl-2", OwnerID: "owner-1", Name: "Follow up"},
		{ID: "tpl-1", OwnerID: "owner-1", Name: "Welcome"},
	}, nil)

	out, err := svc.List("owner-1")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "tpl-2", out[0].ID)
}
