package plugin_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/mediahub/internal/plugin"
	"github.com/vmunix/mediahub/internal/plugin/mocks"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mockSearcher(ctrl *gomock.Controller, name string) *mocks.MockSearcher {
	s := mocks.NewMockSearcher(ctrl)
	s.EXPECT().Name().Return(name).AnyTimes()
	s.EXPECT().Version().Return("1.0.0").AnyTimes()
	s.EXPECT().ConfigSchema().Return([]plugin.ConfigField{
		{Key: "timeout", Kind: plugin.KindNumber, Default: 30},
	}).AnyTimes()
	return s
}

func TestRegistry_StoreReadFailureUsesDefaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockConfigStore(ctrl)
	s := mockSearcher(ctrl, "alpha")

	store.EXPECT().Get(gomock.Any(), plugin.TypeSearch, "alpha").Return(nil, errors.New("disk gone"))
	s.EXPECT().SetConfig(plugin.Config{"timeout": 30})

	r := plugin.NewRegistry(store, nil, discard())
	require.NoError(t, r.Register(context.Background(), s))
	assert.Equal(t, []string{"alpha"}, r.Names(plugin.TypeSearch))
}

func TestRegistry_SetConfigPersistFailureKeepsLiveConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockConfigStore(ctrl)
	s := mockSearcher(ctrl, "alpha")
	ctx := context.Background()

	gomock.InOrder(
		store.EXPECT().Get(gomock.Any(), plugin.TypeSearch, "alpha").Return(plugin.Config{}, nil),
		s.EXPECT().SetConfig(plugin.Config{"timeout": 30}),
	)
	r := plugin.NewRegistry(store, nil, discard())
	require.NoError(t, r.Register(ctx, s))

	store.EXPECT().Get(gomock.Any(), plugin.TypeSearch, "alpha").Return(plugin.Config{plugin.EnabledKey: false}, nil)
	store.EXPECT().Set(gomock.Any(), plugin.TypeSearch, "alpha", plugin.Config{"timeout": 60, plugin.EnabledKey: false}).
		Return(errors.New("read-only"))

	err := r.SetConfig(ctx, plugin.TypeSearch, "alpha", plugin.Config{"timeout": "60"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
}

func TestRegistry_EnabledSearchersPropagatesStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockConfigStore(ctrl)
	s := mockSearcher(ctrl, "alpha")
	ctx := context.Background()

	store.EXPECT().Get(gomock.Any(), plugin.TypeSearch, "alpha").Return(plugin.Config{}, nil)
	s.EXPECT().SetConfig(gomock.Any())
	store.EXPECT().IsEnabled(gomock.Any(), plugin.TypeSearch, "alpha").Return(false, errors.New("locked"))

	r := plugin.NewRegistry(store, nil, discard())
	require.NoError(t, r.Register(ctx, s))

	_, err := r.EnabledSearchers(ctx)
	require.Error(t, err)
}
