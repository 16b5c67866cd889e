package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger/internal/chat"
	"messenger/internal/models"
)

func TestDecodeFrame(t *testing.T) {
	name, cmd, err := decodeFrame([]byte(`{"event":"create_group","data":{"group_name":"team","members":["000001","000002"]}}`))
	require.NoError(t, err)
	assert.Equal(t, "create_group", name)
	assert.Equal(t, chat.CreateGroup{GroupName: "team", Members: []string{"000001", "000002"}}, cmd)

	_, cmd, err = decodeFrame([]byte(`{"event":"send_message","data":{"channel":"abc","message":"hi","channel_type":"private"}}`))
	require.NoError(t, err)
	assert.Equal(t, chat.SendMessage{Channel: "abc", Message: "hi", ChannelType: models.KindPrivate}, cmd)

	_, cmd, err = decodeFrame([]byte(`{"event":"get_groups"}`))
	require.NoError(t, err)
	assert.Equal(t, chat.GetGroups{}, cmd)

	_, cmd, err = decodeFrame([]byte(`{"event":"delete_message","data":{"message_id":7,"channel":"general"}}`))
	require.NoError(t, err)
	assert.Equal(t, chat.DeleteMessage{MessageID: 7, Channel: "general"}, cmd)
}

func TestDecodeFrameErrors(t *testing.T) {
	_, _, err := decodeFrame([]byte(`not json`))
	require.Error(t, err)

	name, _, err := decodeFrame([]byte(`{"event":"fly"}`))
	require.ErrorIs(t, err, errUnknownEvent)
	assert.Equal(t, "fly", name)

	_, _, err = decodeFrame([]byte(`{"event":"delete_message","data":{"message_id":"seven"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid delete_message payload")
}
