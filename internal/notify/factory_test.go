package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSenderFactory_Validation(t *testing.T) {
	_, err := NewSenderFactory(FactoryConfig{Provider: "pigeon"}, nil)
	assert.ErrorIs(t, err, ErrUnknownProvider)

	_, err = NewSenderFactory(FactoryConfig{Provider: "ses"}, nil)
	assert.Error(t, err)

	f, err := NewSenderFactory(FactoryConfig{Provider: "  SendGrid "}, nil)
	require.NoError(t, err)
	assert.Equal(t, ProviderSendGrid, f.Provider())
	assert.True(t, f.NeedsCredential())
}

func TestSenderFactory_Build(t *testing.T) {
	ctx := context.Background()

	stub, err := NewSenderFactory(FactoryConfig{Provider: ProviderStub}, nil)
	require.NoError(t, err)
	assert.False(t, stub.NeedsCredential())
	sender, err := stub.Build(ctx, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, sender)

	sg, err := NewSenderFactory(FactoryConfig{Provider: ProviderSendGrid, From: Identity{Email: "info@spacesquare.dev"}}, nil)
	require.NoError(t, err)
	_, err = sg.Build(ctx, []byte("  \n"))
	assert.ErrorIs(t, err, ErrMissingCredential)
	sender, err = sg.Build(ctx, []byte("SG.key\n"))
	require.NoError(t, err)
	require.IsType(t, &SendGridSender{}, sender)

	ses, err := NewSenderFactory(FactoryConfig{Provider: ProviderSES, SES: &fakeSES{}}, nil)
	require.NoError(t, err)
	sender, err = ses.Build(ctx, nil)
	require.NoError(t, err)
	assert.IsType(t, &SESSender{}, sender)

	gm, err := NewSenderFactory(FactoryConfig{Provider: ProviderGmail}, nil)
	require.NoError(t, err)
	_, err = gm.Build(ctx, nil)
	assert.ErrorIs(t, err, ErrMissingCredential)
	_, err = gm.Build(ctx, []byte("{}"))
	assert.Error(t, err)
}
