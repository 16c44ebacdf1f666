package errors

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithDetail_ReturnsClone(t *testing.T) {
	detailed := ErrInvalidParam.WithDetail("userId is required")

	require.Equal(t, "userId is required", detailed.Detail)
	require.Equal(t, CodeInvalidParam, detailed.Code)
	require.Equal(t, ErrInvalidParam.HTTPStatus, detailed.HTTPStatus)

	// 预定义错误本体不被污染
	require.Empty(t, ErrInvalidParam.Detail)
	require.NotSame(t, ErrInvalidParam, detailed)
}

func TestWithError_ReturnsClone(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	wrapped := ErrWebhookTransport.WithError(cause)

	require.Same(t, cause, wrapped.Unwrap())
	require.Nil(t, ErrWebhookTransport.Err)
	require.NotSame(t, ErrWebhookTransport, wrapped)
}

func TestWithDetail_ConcurrentUseOfPredefinedError(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			detail := fmt.Sprintf("bad field %d", i)
			e := ErrInvalidParam.WithDetail(detail)
			require.Equal(t, detail, e.Detail)
		}(i)
	}
	wg.Wait()

	require.Empty(t, ErrInvalidParam.Detail)
}
