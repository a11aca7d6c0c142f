package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// BatchInvalidate invalidates multiple patterns in batch
func BatchInvalidate(ctx context.Context, helper *CacheHelper, patterns []string) error {
	var lastErr error
	for _, pattern := range patterns {
		if err := helper.InvalidatePattern(ctx, pattern); err != nil {
			lastErr = err
			slog.ErrorContext(ctx, "Failed to invalidate pattern in batch",
				"error", err,
				"pattern", pattern)
		}
	}
	return lastErr
}

// InvalidateWorkOrderCache invalidates all work-order-related caches
func InvalidateWorkOrderCache(ctx context.Context, cm *CacheManager, orderID uint) {
	SafeDelete(ctx, cm.WorkOrder,
		fmt.Sprintf("id:%d", orderID),
		fmt.Sprintf("details:%d", orderID))

	SafeInvalidatePattern(ctx, cm.WorkOrder, "list:*")
	SafeInvalidatePattern(ctx, cm.WorkOrder, "user:*")
	SafeDelete(ctx, cm.Room, fmt.Sprintf("order:%d", orderID))
}

// InvalidateVehicleCache invalidates all vehicle-related caches
func InvalidateVehicleCache(ctx context.Context, cm *CacheManager, vehicleID uint) {
	SafeDelete(ctx, cm.Vehicle, fmt.Sprintf("id:%d", vehicleID))
	SafeInvalidatePattern(ctx, cm.Vehicle, "list:*")
}

// InvalidateUserCache invalidates all user-related caches
func InvalidateUserCache(ctx context.Context, cm *CacheManager, userID uint) {
	SafeDelete(ctx, cm.User, fmt.Sprintf("id:%d", userID))
	SafeInvalidatePattern(ctx, cm.User, "list:*")
	SafeInvalidatePattern(ctx, cm.User, "role:*")
}
