package services

import "cyberadvisor/internal/models"

// DefaultQuestionBank is the built-in cybersecurity question bank, seeded
// into the database by the admin CLI. Questions cover phishing, passwords,
// malware, networks, privacy, and safe everyday habits.
var DefaultQuestionBank = []models.QuizQuestion{
	{
		QuestionText:       "What is phishing?",
		Options:            []string{"A technique to catch fish using nets", "A scam where attackers impersonate trusted parties to steal information", "A way to speed up your internet connection", "A type of antivirus software"},
		CorrectOptionIndex: 1,
		Explanation:        "Phishing tricks you into handing over passwords, card numbers, or codes by pretending to be a bank, employer, or service you trust.",
	},
	{
		QuestionText:       "Which of these is the strongest password?",
		Options:            []string{"password123", "qwerty", "T7#kp!v9Lm$2wQ", "john1990"},
		CorrectOptionIndex: 2,
		Explanation:        "Long passwords mixing random letters, numbers, and symbols are far harder to guess or crack than names, dates, or keyboard patterns.",
	},
	{
		QuestionText:       "What does two-factor authentication (2FA) add to your account security?",
		Options:            []string{"A second password you must remember", "A backup email address", "A second proof of identity beyond your password, like a code on your phone", "Automatic password changes every week"},
		CorrectOptionIndex: 2,
		Explanation:        "2FA requires something you have (a phone or security key) in addition to something you know, so a stolen password alone is not enough.",
	},
	{
		QuestionText:       "You receive an email saying your bank account is locked and you must click a link immediately. What should you do?",
		Options:            []string{"Click the link quickly before the account closes", "Reply with your account number to verify", "Forward it to all your contacts as a warning", "Go to your bank's website directly or call them using a number you know"},
		CorrectOptionIndex: 3,
		Explanation:        "Urgency is a classic phishing pressure tactic. Never use links in unexpected messages; contact the organization through a channel you already trust.",
	},
	{
		QuestionText:       "What is malware?",
		Options:            []string{"Software designed to harm devices or steal data", "A hardware fault in your computer", "An outdated web browser", "A slow internet connection"},
		CorrectOptionIndex: 0,
		Explanation:        "Malware is any malicious software, including viruses, trojans, spyware, and ransomware.",
	},
	{
		QuestionText:       "What does ransomware do?",
		Options:            []string{"Speeds up your files", "Encrypts your files and demands payment to unlock them", "Deletes your browser history", "Sends you advertising emails"},
		CorrectOptionIndex: 1,
		Explanation:        "Ransomware locks your data with encryption and extorts payment. Regular offline backups are the best defense.",
	},
	{
		QuestionText:       "Why is public Wi-Fi risky for sensitive tasks like banking?",
		Options:            []string{"It is always too slow", "Others on the network may intercept your traffic", "It drains your battery faster", "Banks block public Wi-Fi"},
		CorrectOptionIndex: 1,
		Explanation:        "Open networks let attackers snoop on or tamper with traffic. Use mobile data or a VPN for sensitive activity.",
	},
	{
		QuestionText:       "What does the padlock icon in your browser's address bar mean?",
		Options:            []string{"The website is guaranteed to be legitimate", "The connection to the site is encrypted", "The site has no viruses", "Your password is saved"},
		CorrectOptionIndex: 1,
		Explanation:        "The padlock means traffic is encrypted with HTTPS. Scam sites can also use HTTPS, so it is not proof a site is trustworthy.",
	},
	{
		QuestionText:       "What is a VPN used for?",
		Options:            []string{"Encrypting your internet traffic and masking your location", "Making your computer immune to viruses", "Increasing your internet speed", "Backing up your files"},
		CorrectOptionIndex: 0,
		Explanation:        "A VPN tunnels your traffic through an encrypted connection, protecting it on untrusted networks and hiding your IP address.",
	},
	{
		QuestionText:       "Which practice best protects you if one of your accounts is breached?",
		Options:            []string{"Using the same strong password everywhere", "Using a unique password for every account", "Writing passwords on a sticky note", "Changing your username often"},
		CorrectOptionIndex: 1,
		Explanation:        "Unique passwords stop a breach at one site from unlocking your other accounts. A password manager makes this practical.",
	},
	{
		QuestionText:       "What is a password manager?",
		Options:            []string{"A person who resets passwords at work", "A tool that generates and securely stores unique passwords", "A notebook for writing down passwords", "A browser feature that deletes old passwords"},
		CorrectOptionIndex: 1,
		Explanation:        "Password managers let you use long random passwords everywhere while only remembering one master password.",
	},
	{
		QuestionText:       "What is social engineering?",
		Options:            []string{"Building social media apps", "Manipulating people into revealing information or taking unsafe actions", "Engineering software for social good", "Analyzing social network data"},
		CorrectOptionIndex: 1,
		Explanation:        "Social engineering attacks target human trust rather than technical flaws, through impersonation, urgency, and flattery.",
	},
	{
		QuestionText:       "A caller claims to be from tech support and asks to remotely access your computer. What is this likely to be?",
		Options:            []string{"Standard practice for all companies", "A tech support scam", "A free service worth accepting", "A network test"},
		CorrectOptionIndex: 1,
		Explanation:        "Legitimate companies do not cold-call asking for remote access. Hang up and contact the company directly if unsure.",
	},
	{
		QuestionText:       "Why should you keep your software and operating system updated?",
		Options:            []string{"Updates make the interface prettier", "Updates patch security holes attackers exploit", "Updates delete old files", "Updates are required by law"},
		CorrectOptionIndex: 1,
		Explanation:        "Many attacks target known vulnerabilities that patches have already fixed. Enable automatic updates where possible.",
	},
	{
		QuestionText:       "What is a firewall?",
		Options:            []string{"A wall that protects servers from fire", "A system that filters network traffic based on rules", "A type of computer virus", "A backup power supply"},
		CorrectOptionIndex: 1,
		Explanation:        "Firewalls control what traffic can enter or leave a device or network, blocking unauthorized connections.",
	},
	{
		QuestionText:       "What does 'HTTPS' at the start of a web address indicate?",
		Options:            []string{"The site is hosted in your country", "The connection is encrypted between you and the site", "The site is a government website", "The site loads faster"},
		CorrectOptionIndex: 1,
		Explanation:        "The S stands for secure: traffic is encrypted in transit so others on the network cannot read it.",
	},
	{
		QuestionText:       "What is a data breach?",
		Options:            []string{"When a company releases a new product", "When protected data is accessed or exposed without authorization", "When your hard drive fails", "When your internet goes down"},
		CorrectOptionIndex: 1,
		Explanation:        "Breaches expose information like emails and passwords. If a service you use is breached, change that password everywhere it was reused.",
	},
	{
		QuestionText:       "What should you do before disposing of an old phone or laptop?",
		Options:            []string{"Just delete your photos", "Remove the battery", "Perform a full factory reset and wipe your data", "Nothing, old data cannot be recovered"},
		CorrectOptionIndex: 2,
		Explanation:        "Deleted files can often be recovered. A proper factory reset or disk wipe keeps your data out of a stranger's hands.",
	},
	{
		QuestionText:       "What is spear phishing?",
		Options:            []string{"Phishing aimed at a specific person using personal details", "Phishing using phone calls", "Phishing through fake apps", "A type of fishing sport"},
		CorrectOptionIndex: 0,
		Explanation:        "Spear phishing is personalized, often citing your name, job, or colleagues to seem credible, which makes it far more convincing than generic spam.",
	},
	{
		QuestionText:       "Which of these is a sign that an email may be a phishing attempt?",
		Options:            []string{"It comes from a colleague you emailed yesterday", "It creates urgency and asks you to click a link or share credentials", "It has a company logo", "It is written in your language"},
		CorrectOptionIndex: 1,
		Explanation:        "Pressure to act fast, requests for credentials, and unexpected links or attachments are classic phishing markers.",
	},
	{
		QuestionText:       "What is a brute-force attack?",
		Options:            []string{"Physically breaking into a server room", "Trying many password combinations until one works", "Overloading a website with traffic", "Stealing a laptop"},
		CorrectOptionIndex: 1,
		Explanation:        "Brute forcing tries passwords systematically. Long passwords and account lockouts make it impractical.",
	},
	{
		QuestionText:       "What is a DDoS attack?",
		Options:            []string{"Stealing data from a database", "Flooding a service with traffic so real users cannot reach it", "Guessing passwords", "Installing spyware"},
		CorrectOptionIndex: 1,
		Explanation:        "Distributed denial-of-service attacks overwhelm servers with traffic from many machines at once.",
	},
	{
		QuestionText:       "Why are attachments in unexpected emails dangerous?",
		Options:            []string{"They use up storage space", "They may contain malware that runs when opened", "They slow down your email", "They are usually boring"},
		CorrectOptionIndex: 1,
		Explanation:        "Malicious attachments are a top malware delivery method. Verify with the sender through another channel before opening.",
	},
	{
		QuestionText:       "What is shoulder surfing?",
		Options:            []string{"A water sport", "Watching someone enter PINs or passwords over their shoulder", "Browsing on a tablet", "Sharing a screen in a meeting"},
		CorrectOptionIndex: 1,
		Explanation:        "Shoulder surfing is low-tech but effective. Shield your screen and keypad in public places.",
	},
	{
		QuestionText:       "What does encryption do to your data?",
		Options:            []string{"Compresses it to save space", "Scrambles it so only someone with the key can read it", "Backs it up to the cloud", "Deletes it securely"},
		CorrectOptionIndex: 1,
		Explanation:        "Encryption makes data unreadable without the key, protecting it in transit and at rest.",
	},
	{
		QuestionText:       "Your friend's account sends you a strange link with the message 'Is this you in this video?'. What likely happened?",
		Options:            []string{"Your friend found a funny video", "Your friend's account was compromised and is spreading a scam", "It is a system notification", "Your own account was hacked"},
		CorrectOptionIndex: 1,
		Explanation:        "Hijacked accounts spread phishing links to contacts. Do not click; warn your friend through another channel.",
	},
	{
		QuestionText:       "What is the safest way to check if a suspicious link is legitimate?",
		Options:            []string{"Click it quickly to see where it goes", "Hover over it to inspect the real destination, or type the known address yourself", "Open it on a friend's phone", "Forward it to a coworker to try"},
		CorrectOptionIndex: 1,
		Explanation:        "The displayed text of a link can say anything. Hovering reveals the real destination; typing the known address avoids the link entirely.",
	},
	{
		QuestionText:       "What is a keylogger?",
		Options:            []string{"A tool that records everything you type", "A device that locks your keyboard", "A password strength checker", "A keyboard shortcut manager"},
		CorrectOptionIndex: 0,
		Explanation:        "Keyloggers capture keystrokes, including passwords. They arrive as malware or hardware implants.",
	},
	{
		QuestionText:       "Why should you lock your screen when leaving your computer?",
		Options:            []string{"To save electricity", "To stop anyone nearby from using your session and data", "To make the screen last longer", "To log out of all websites"},
		CorrectOptionIndex: 1,
		Explanation:        "An unlocked machine gives a passerby your email, files, and logged-in accounts. Locking takes one keystroke.",
	},
	{
		QuestionText:       "What does 'smishing' refer to?",
		Options:            []string{"Phishing via SMS text messages", "Breaking smartphone screens", "A type of encryption", "Spam filtering"},
		CorrectOptionIndex: 0,
		Explanation:        "Smishing uses text messages with malicious links, often posing as delivery services, banks, or government agencies.",
	},
	{
		QuestionText:       "Which information is safe to share publicly on social media?",
		Options:            []string{"Your home address", "Your travel dates while away", "Your general hobbies and interests", "Photos of your ID documents"},
		CorrectOptionIndex: 2,
		Explanation:        "Addresses, travel plans, and documents enable burglary and identity theft. Generic interests carry far less risk.",
	},
	{
		QuestionText:       "What is identity theft?",
		Options:            []string{"Forgetting your own password", "Someone using your personal information to impersonate you", "Losing your ID card", "Changing your legal name"},
		CorrectOptionIndex: 1,
		Explanation:        "With enough stolen details, criminals can open accounts, take loans, or commit fraud in your name.",
	},
	{
		QuestionText:       "Why should you review app permissions on your phone?",
		Options:            []string{"To free up storage", "Apps may request access to data they do not need, like your contacts or location", "To make apps run faster", "Permissions expire monthly"},
		CorrectOptionIndex: 1,
		Explanation:        "A flashlight app does not need your contacts. Deny permissions that do not match what the app does.",
	},
	{
		QuestionText:       "What is the risk of using USB drives found in public places?",
		Options:            []string{"They may be too small to be useful", "They may carry malware that installs when plugged in", "They are usually empty", "They may be slow"},
		CorrectOptionIndex: 1,
		Explanation:        "Dropped drives are a known attack technique. Never plug in storage devices of unknown origin.",
	},
	{
		QuestionText:       "What is a zero-day vulnerability?",
		Options:            []string{"A bug discovered on the day software launches", "A flaw unknown to the vendor, with no patch available yet", "A vulnerability that expires in one day", "A bug that causes zero damage"},
		CorrectOptionIndex: 1,
		Explanation:        "Zero-days are exploited before the vendor can fix them, which is why defense in depth matters.",
	},
	{
		QuestionText:       "What is the main purpose of regular data backups?",
		Options:            []string{"To speed up your computer", "To recover your data after loss, theft, or ransomware", "To share files with friends", "To uninstall old programs"},
		CorrectOptionIndex: 1,
		Explanation:        "Backups turn a disaster into an inconvenience. Keep at least one copy offline or in a separate location.",
	},
	{
		QuestionText:       "Which of these is an example of multi-factor authentication?",
		Options:            []string{"Entering your password twice", "Password plus a fingerprint or one-time code", "Two different passwords", "A very long password"},
		CorrectOptionIndex: 1,
		Explanation:        "Factors must be different kinds: something you know, have, or are. Two passwords are still one factor.",
	},
	{
		QuestionText:       "What is spyware?",
		Options:            []string{"Software that secretly monitors your activity and collects data", "Software used by detectives", "A camera app", "A parental control feature"},
		CorrectOptionIndex: 0,
		Explanation:        "Spyware harvests browsing habits, keystrokes, or files without consent, often bundled with shady downloads.",
	},
	{
		QuestionText:       "Why is 'admin' a bad username-password combination for your home router?",
		Options:            []string{"It is too short to type", "Default credentials are publicly known and tried first by attackers", "Routers do not support it", "It slows down Wi-Fi"},
		CorrectOptionIndex: 1,
		Explanation:        "Default logins for every router model are listed online. Change them the day you set up the device.",
	},
	{
		QuestionText:       "What should you do if you suspect your password was stolen?",
		Options:            []string{"Wait to see if anything happens", "Change it immediately and enable 2FA, and change it on any site where it was reused", "Delete your account", "Use a shorter password next time"},
		CorrectOptionIndex: 1,
		Explanation:        "Act fast: change the password everywhere it was used and add a second factor so the stolen password is useless.",
	},
	{
		QuestionText:       "What is a trojan horse in computing?",
		Options:            []string{"A statue-building game", "Malware disguised as legitimate software", "A very old computer", "A strong firewall"},
		CorrectOptionIndex: 1,
		Explanation:        "Trojans look like useful programs but carry a hidden malicious payload, just like the myth.",
	},
	{
		QuestionText:       "Why should you log out of accounts on shared or public computers?",
		Options:            []string{"To save the computer's memory", "So the next person cannot access your account", "To make the browser faster", "It is required by most websites"},
		CorrectOptionIndex: 1,
		Explanation:        "Staying logged in on a shared machine hands your account to the next user. Better yet, use private browsing.",
	},
	{
		QuestionText:       "What does a password's length contribute to its strength?",
		Options:            []string{"Nothing, only symbols matter", "Each extra character multiplies the number of guesses needed", "Longer passwords are weaker", "Length only matters up to 6 characters"},
		CorrectOptionIndex: 1,
		Explanation:        "Length is the biggest strength factor: every added character multiplies the search space for attackers.",
	},
	{
		QuestionText:       "What is 'vishing'?",
		Options:            []string{"Phishing carried out over voice calls", "A video streaming scam", "Watching videos securely", "A VPN feature"},
		CorrectOptionIndex: 0,
		Explanation:        "Vishing uses phone calls, often with spoofed caller IDs, to pressure victims into revealing information or transferring money.",
	},
	{
		QuestionText:       "Why do attackers spoof email sender addresses?",
		Options:            []string{"To save on postage", "To make messages appear to come from someone you trust", "Because their own address is too long", "To avoid spam folders only"},
		CorrectOptionIndex: 1,
		Explanation:        "A forged 'From' address borrows the trust of a known contact or brand. Check the full address and verify unexpected requests.",
	},
	{
		QuestionText:       "What is the principle of least privilege?",
		Options:            []string{"Giving everyone admin rights for convenience", "Granting only the access needed to do a task, and no more", "Using the cheapest security tools", "Restricting internet speed"},
		CorrectOptionIndex: 1,
		Explanation:        "Least privilege limits the damage a compromised account or program can do. It applies to people, apps, and services alike.",
	},
	{
		QuestionText:       "An online store you have never heard of offers a new phone at 90% off and accepts bank transfer only. What is the biggest red flag?",
		Options:            []string{"The phone's color options", "An unrealistic discount combined with an untraceable payment method", "The website loads slowly", "The store is foreign"},
		CorrectOptionIndex: 1,
		Explanation:        "Too-good-to-be-true prices plus irreversible payments are the signature of shopping scams. Card payments at known retailers offer recourse; transfers do not.",
	},
	{
		QuestionText:       "What is a botnet?",
		Options:            []string{"A social network for robots", "A network of compromised devices controlled by an attacker", "An antivirus network", "A group chat bot"},
		CorrectOptionIndex: 1,
		Explanation:        "Infected devices, including home routers and cameras, are herded into botnets used for attacks and spam, often without the owners noticing.",
	},
	{
		QuestionText:       "Why should you be careful with browser extensions?",
		Options:            []string{"They are always paid", "They can read and modify the pages you visit, including sensitive data", "They slow down your mouse", "They only work offline"},
		CorrectOptionIndex: 1,
		Explanation:        "Extensions run with broad access to your browsing. Install only well-reviewed ones you actually need, from official stores.",
	},
	{
		QuestionText:       "What is the safest response to a message offering a prize for a contest you never entered?",
		Options:            []string{"Pay the small processing fee to claim it", "Share it with friends so they can win too", "Ignore and delete it", "Reply with your address for delivery"},
		CorrectOptionIndex: 2,
		Explanation:        "Unsolicited prize notifications are advance-fee scams. Any request for payment or personal data to 'claim' a prize confirms it.",
	},
}
