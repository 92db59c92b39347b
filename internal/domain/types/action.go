package types

const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitReconnected       = "rabbitmq_reconnection_success"
	ActionRabbitExchangeDeclared  = "rabbitmq_exchange_declared"

	ActionDatabaseTransactionFailed = "database_transaction_failed"
	ActionDatabaseQueryFailed       = "database_query_failed"

	ActionLocationUpdated       = "location_updated"
	ActionLocationRateLimited   = "location_rate_limited"
	ActionHistoryAppendFailed   = "location_history_append_failed"
	ActionEventPublishFailed    = "location_event_publish_failed"
	ActionSharingToggled        = "location_sharing_toggled"
	ActionIncognitoToggled      = "incognito_toggled"
	ActionNearbySearch          = "nearby_search"
	ActionPrivacySettingsUpdate = "privacy_settings_updated"
	ActionPrivacyBatchEvaluated = "privacy_batch_evaluated"
	ActionProfileProjection     = "profile_projection_failed"
)
