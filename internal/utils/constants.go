package utils

// HTTP Header Constants
const (
	HeaderContentType   = "Content-Type"
	HeaderContentLength = "Content-Length"
	HeaderUserAgent     = "User-Agent"
	HeaderCacheControl  = "Cache-Control"

	// Request/Response Tracking Headers
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderResponseTime  = "X-Response-Time"

	// Client IP Headers (priority order)
	HeaderXForwardedFor  = "X-Forwarded-For"
	HeaderXRealIP        = "X-Real-IP"
	HeaderCFConnectingIP = "CF-Connecting-IP"
	HeaderCloudFlareRay  = "cf-ray"

	// Shell cache headers
	HeaderXCache         = "X-Cache"
	HeaderServiceWorker  = "Service-Worker-Allowed"
	HeaderAuthorization  = "Authorization"
	HeaderGoogleAPIKey   = "X-Goog-Api-Key"
	HeaderAcceptEncoding = "Accept-Encoding"

	// CORS Headers
	HeaderAccessControlAllowOrigin   = "Access-Control-Allow-Origin"
	HeaderAccessControlAllowMethods  = "Access-Control-Allow-Methods"
	HeaderAccessControlAllowHeaders  = "Access-Control-Allow-Headers"
	HeaderAccessControlExposeHeaders = "Access-Control-Expose-Headers"
)

// Content Type Constants
const (
	ContentTypeJSON       = "application/json"
	ContentTypeJSONUTF8   = "application/json; charset=utf-8"
	ContentTypeJavaScript = "application/javascript; charset=utf-8"
)

// Cache Control Values
const (
	CacheControlNoCache = "no-cache"
	CacheControlNoStore = "no-cache, no-store, must-revalidate"
)

// X-Cache values reported by the shell cache
const (
	CacheHit  = "HIT"
	CacheMiss = "MISS"
)

// Service Values
const (
	ServiceName      = "Report-Analyzer/1.0"
	ServiceUserAgent = "ReportAnalyzer/1.0"
)

// CORS Values
const (
	CORSAllowOriginAll   = "*"
	CORSAllowMethodsAll  = "POST, GET, OPTIONS"
	CORSAllowHeadersStd  = "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization"
	CORSExposeHeadersStd = "X-Request-ID, X-Correlation-ID, X-Response-Time"
)
