package preview

import (
	"encoding/json"
	"fmt"
)

const overlayID = "preview-error-overlay"

// overlayScript logs message to the console and paints a full-screen
// overlay naming the offending file. It is served as a module body.
func overlayScript(message, sourcePath string) string {
	return fmt.Sprintf(`(function () {
  var message = %s;
  var source = %s;
  console.error("[Build Error] " + source + ": " + message);
  var render = function () {
    var overlay = document.getElementById(%q);
    if (!overlay) {
      overlay = document.createElement("div");
      overlay.id = %q;
      Object.assign(overlay.style, {
        position: "fixed", top: "0", left: "0", right: "0", bottom: "0",
        backgroundColor: "rgba(0, 0, 0, 0.85)", color: "#ff5555", zIndex: "99999",
        padding: "20px", overflow: "auto", fontFamily: "monospace", fontSize: "14px",
        whiteSpace: "pre-wrap"
      });
      document.body.appendChild(overlay);
    }
    overlay.textContent = "";
    var title = document.createElement("h3");
    title.textContent = "Build Error";
    var file = document.createElement("div");
    file.style.color = "#ccc";
    file.textContent = "File: " + source;
    var body = document.createElement("div");
    body.textContent = message;
    overlay.append(title, file, body);
  };
  if (document.body) { render(); } else { window.addEventListener("DOMContentLoaded", render); }
})();
`, jsString(message), jsString(sourcePath), overlayID, overlayID)
}

// styleScript injects css as a <style> element tagged with its path.
func styleScript(css, path string) string {
	return fmt.Sprintf(`(function () {
  var path = %s;
  var style = document.querySelector('style[data-file="' + path + '"]');
  if (!style) {
    style = document.createElement("style");
    style.setAttribute("data-file", path);
    document.head.appendChild(style);
  }
  style.textContent = %s;
})();
`, jsString(path), jsString(css))
}

const consoleBridgeScript = `(function () {
  var post = function (level, args) {
    var content = Array.prototype.map.call(args, function (a) {
      if (a instanceof Error) { return a.stack || a.message; }
      if (typeof a === "object") { try { return JSON.stringify(a); } catch (e) { return String(a); } }
      return String(a);
    }).join(" ");
    try { window.parent.postMessage({ type: "PREVIEW_CONSOLE", level: level, content: content }, "*"); } catch (e) {}
  };
  ["log", "info", "warn", "error", "debug"].forEach(function (level) {
    var original = console[level];
    console[level] = function () {
      post(level, arguments);
      if (original) { original.apply(console, arguments); }
    };
  });
  var showRuntimeError = function (text) {
    var bar = document.createElement("div");
    Object.assign(bar.style, {
      position: "fixed", top: "0", left: "0", right: "0", padding: "12px",
      backgroundColor: "#ef4444", color: "white", fontFamily: "monospace",
      fontSize: "12px", zIndex: "99999", whiteSpace: "pre-wrap"
    });
    bar.textContent = "Runtime Error: " + text;
    (document.body || document.documentElement).appendChild(bar);
  };
  window.addEventListener("error", function (e) {
    post("error", [e.error || e.message]);
    showRuntimeError(e.message);
  });
  window.addEventListener("unhandledrejection", function (e) {
    var reason = e.reason && e.reason.message ? e.reason.message : String(e.reason);
    post("error", ["Unhandled rejection: " + reason]);
    showRuntimeError(reason);
  });
})();`

// jsString encodes s as a JavaScript string literal. encoding/json escapes
// '<', '>', '&', U+2028 and U+2029, so the literal is safe inside <script>.
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
