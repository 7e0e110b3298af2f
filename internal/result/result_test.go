package result

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type payload struct {
	Title string `json:"title"`
}

func TestResult_JSONShape(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(Ok(payload{Title: "A"}))
	require.NoError(t, err)
	require.JSONEq(t, `{"success":true,"data":{"title":"A"}}`, string(b))

	b, err = json.Marshal(Fail[payload]("User not found"))
	require.NoError(t, err)
	require.JSONEq(t, `{"success":false,"error":"User not found"}`, string(b))

	// absent draft: data present but null
	b, err = json.Marshal(Ok[*payload](nil))
	require.NoError(t, err)
	require.JSONEq(t, `{"success":true,"data":null}`, string(b))
}

func TestResult_Decode(t *testing.T) {
	t.Parallel()

	var ok Result[*payload]
	require.NoError(t, json.Unmarshal([]byte(`{"success":true,"data":{"title":"B"}}`), &ok))
	require.True(t, ok.Success())
	require.Equal(t, "B", ok.Data().Title)

	var empty Result[*payload]
	require.NoError(t, json.Unmarshal([]byte(`{"success":true,"data":null}`), &empty))
	require.True(t, empty.Success())
	require.Nil(t, empty.Data())

	var bad Result[*payload]
	require.NoError(t, json.Unmarshal([]byte(`{"success":false,"error":"Unauthorized"}`), &bad))
	require.False(t, bad.Success())
	require.Equal(t, "Unauthorized", bad.Error())
	_, err := bad.Unwrap()
	require.EqualError(t, err, "Unauthorized")
}

func TestFail_EmptyMessage(t *testing.T) {
	t.Parallel()

	r := Fail[int]("")
	require.False(t, r.Success())
	require.NotEmpty(t, r.Error())
}
