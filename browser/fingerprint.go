package browser

// Profile is the fixed fingerprint applied to every session context. The
// values mimic a desktop Chrome on Windows browsing from Spain, matching the
// portal's expected audience.
type Profile struct {
	ViewportWidth  int
	ViewportHeight int
	UserAgent      string
	AcceptLanguage string
	Platform       string
	Locale         string
	TimezoneID     string
	Latitude       float64
	Longitude      float64
}

// DefaultProfile returns the fingerprint profile used for all attempts.
func DefaultProfile() Profile {
	return Profile{
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		AcceptLanguage: "es-ES,es;q=0.9,en-US;q=0.8,en;q=0.7",
		Platform:       "Win32",
		Locale:         "es-ES",
		TimezoneID:     "Europe/Madrid",
		Latitude:       40.4168, // Madrid
		Longitude:      -3.7038,
	}
}

// StealthFeatures lists the anti-detection measures for the status endpoint.
func StealthFeatures() []string {
	return []string{
		"disable-blink-features=AutomationControlled",
		"navigator.webdriver masked",
		"chrome runtime shim",
		"plugin/language/platform overrides",
		"hardwareConcurrency/deviceMemory overrides",
		"WebGL vendor/renderer overrides",
		"randomized humanlike delays and scrolling",
	}
}

// fingerprintJS is evaluated on every new document before any page script
// runs. It patches the automation-detection surface the way a real Chrome
// reports it. Layered on top of the go-rod/stealth baseline.
const fingerprintJS = `(() => {
	Object.defineProperty(navigator, 'webdriver', { get: () => false });

	window.chrome = window.chrome || {
		runtime: {},
		loadTimes: function() {},
		csi: function() {},
		app: {}
	};

	Object.defineProperty(navigator, 'plugins', {
		get: () => [
			{
				0: {type: "application/x-google-chrome-pdf"},
				description: "Portable Document Format",
				filename: "internal-pdf-viewer",
				length: 1,
				name: "Chrome PDF Plugin"
			}
		]
	});

	Object.defineProperty(navigator, 'languages', {
		get: () => ['es-ES', 'es', 'en-US', 'en']
	});

	Object.defineProperty(navigator, 'platform', {
		get: () => 'Win32'
	});

	Object.defineProperty(navigator, 'hardwareConcurrency', {
		get: () => 8
	});

	Object.defineProperty(navigator, 'deviceMemory', {
		get: () => 8
	});

	const originalQuery = window.navigator.permissions.query;
	window.navigator.permissions.query = (parameters) => (
		parameters.name === 'notifications' ?
			Promise.resolve({ state: Notification.permission }) :
			originalQuery(parameters)
	);

	const getParameter = WebGLRenderingContext.prototype.getParameter;
	WebGLRenderingContext.prototype.getParameter = function(parameter) {
		if (parameter === 37445) return 'Intel Inc.';
		if (parameter === 37446) return 'Intel(R) UHD Graphics 620';
		return getParameter.apply(this, [parameter]);
	};
})()`
